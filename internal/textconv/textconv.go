package textconv

import (
	"sync"

	"media-player/internal/logging"
	"media-player/internal/metrics"

	"github.com/longbridgeapp/opencc"
)

// DefaultConversion converts Traditional Chinese (Taiwan) to Simplified Chinese.
const DefaultConversion = "tw2s"

// converter is the subset of *opencc.OpenCC the package uses.
type converter interface {
	Convert(in string) (string, error)
}

// Converter normalizes search text to Simplified Chinese. It fails open:
// any error is logged and the input is returned unchanged.
type Converter struct {
	conversion string

	once sync.Once
	cc   converter
	err  error

	newConverter func(conversion string) (converter, error)
}

// New returns a Converter for the given OpenCC conversion. The underlying
// dictionaries are loaded on first use.
func New(conversion string) *Converter {
	if conversion == "" {
		conversion = DefaultConversion
	}
	return &Converter{
		conversion:   conversion,
		newConverter: openccConverter,
	}
}

func openccConverter(conversion string) (converter, error) {
	return opencc.New(conversion)
}

func (c *Converter) load() {
	c.once.Do(func() {
		c.cc, c.err = c.newConverter(c.conversion)
		if c.err != nil {
			logging.Error("Failed to initialize OpenCC %s converter, text conversion disabled: %v", c.conversion, c.err)
		}
	})
}

// Available reports whether the converter could be constructed.
func (c *Converter) Available() bool {
	c.load()
	return c.err == nil
}

// Convert returns text converted to Simplified Chinese. Empty input is
// returned untouched.
func (c *Converter) Convert(text string) string {
	if text == "" {
		return text
	}

	c.load()
	if c.err != nil {
		metrics.TextConversionsTotal.WithLabelValues("unavailable").Inc()
		return text
	}

	out, err := c.cc.Convert(text)
	if err != nil {
		logging.Warn("OpenCC conversion failed for %q: %v", text, err)
		metrics.TextConversionsTotal.WithLabelValues("error").Inc()
		return text
	}

	metrics.TextConversionsTotal.WithLabelValues("success").Inc()
	return out
}
