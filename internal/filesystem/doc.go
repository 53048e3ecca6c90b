/*
Package filesystem wraps os.Stat and os.Open with retries for NFS stale file
handle errors (ESTALE).

Media libraries are often mounted over NFS. When the server replaces a file
or the mount briefly drops, the next stat of a cached handle fails with
ESTALE even though a retry moments later succeeds. Every other error is
returned immediately.

	info, err := filesystem.Stat(ctx, "/media/clips/phone.mp4")

Retries back off exponentially from 50ms to 500ms, three times by default,
and stop early when ctx ends. Stale errors and retry outcomes are counted
per volume; configure the volume labels once at startup:

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
	    "media": config.MediaDir,
	    "cache": config.CacheDir,
	}))
*/
package filesystem
