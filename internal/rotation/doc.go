// Package rotation decides how a video element is rotated and sized so
// that portrait footage fills its container, inline and fullscreen.
//
// The package has three parts:
//
//   - [Detector] watches a [VideoSource] and classifies its intrinsic
//     size as portrait or landscape once metadata is available. It checks
//     immediately on attach, since metadata may have loaded first, and
//     reports each distinct size once.
//   - [Controller] owns a [State] and applies the transitions: automatic
//     rotation of portrait video, manual toggling through a fixed cycle,
//     fullscreen edges and reset. The transitions themselves are pure
//     functions ([ApplySizeKnown], [ApplyToggle], [ApplyFullscreen],
//     [ApplyReset]) over a State value.
//   - [ComputeTransform] turns angle, container size, video size and the
//     fullscreen flag into a [TransformResult] the renderer applies.
//
// # Policy
//
// A [Policy] fixes four choices for the life of a controller: when to
// auto-rotate ([TriggerOnLoad] or [TriggerOnFullscreen]), the toggle order
// ([CycleAscending] or [CycleDescending]), the automatic angle (90 or 270)
// and the fitting strategy. [DefaultPolicy] rotates on load to 90°,
// toggles ascending and uses [StrategyContainerRelative].
//
// # Fitting strategies
//
// [StrategyContainerRelative] sizes the unrotated element to the
// container's height × width, centers it with top/left 50% and a
// translate(-50%, -50%), then rotates it. After a quarter turn its visual
// footprint equals the container exactly, with no scale factor.
// [StrategyStaticScale] rotates a 100% box and scales it by the container
// aspect ratio. [StrategyFullscreenSwap] sizes the box to 100vh × 100vw
// while fullscreen.
//
// # Concurrency
//
// A Controller is single-threaded. Callers serialize events, and batches
// delivered in one tick go through [Controller.Apply], which processes
// metadata before fullscreen changes.
package rotation
