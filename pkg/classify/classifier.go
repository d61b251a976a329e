package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/feature"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

// Classifier classifies pins of configuration images. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	ext     *feature.Extractor
	proc    Procedure
	catalog *feature.Catalog
	roles   RoleLookup
	cfg     *Config
	logger  log.Logger

	// catalog positions resolved once in New
	pullUp      int
	output      []int
	input       int
	diffInput   int
	diffRx      int
	diffTx      int
	termination []int
	standard    []int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCatalog sets the feature catalog (default: feature.DefaultCatalog).
func WithCatalog(c *feature.Catalog) Option {
	return func(cl *Classifier) { cl.catalog = c }
}

// WithRoles sets the channel role source. Without it every pin has RoleNone.
func WithRoles(r RoleLookup) Option {
	return func(cl *Classifier) { cl.roles = r }
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg *Config) Option {
	return func(cl *Classifier) { cl.cfg = cfg }
}

// WithLogger sets the logger used for per-pin diagnostics.
func WithLogger(l log.Logger) Option {
	return func(cl *Classifier) { cl.logger = l }
}

// New creates a Classifier reading features through ext and predicting I/O
// standards with proc. It fails if the configuration or the procedure refer
// to offsets missing from the catalog.
func New(ext *feature.Extractor, proc Procedure, opts ...Option) (*Classifier, error) {
	if ext == nil || proc == nil {
		return nil, errors.New("classify: extractor and procedure are required")
	}

	c := &Classifier{ext: ext, proc: proc}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		c.catalog = feature.DefaultCatalog()
	}
	if c.roles == nil {
		c.roles = RoleMap(nil)
	}
	if c.cfg == nil {
		c.cfg = DefaultConfig()
	}
	if c.logger == nil {
		c.logger = log.NewNopLogger()
	}

	if err := c.cfg.Validate(c.catalog); err != nil {
		return nil, err
	}

	idx := func(off int) int {
		i, _ := c.catalog.IndexOf(off)
		return i
	}
	c.pullUp = idx(c.cfg.PullUpOffset)
	c.input = idx(c.cfg.InputOffset)
	c.diffInput = idx(c.cfg.DiffInputOffset)
	c.diffRx = idx(c.cfg.DiffRxOffset)
	c.diffTx = idx(c.cfg.DiffTxOffset)
	c.output, _ = c.catalog.IndexesOf(c.cfg.OutputOffsets...)
	c.termination, _ = c.catalog.IndexesOf(c.cfg.TerminationOffsets...)

	var err error
	if c.standard, err = c.catalog.IndexesOf(proc.Features()...); err != nil {
		return nil, fmt.Errorf("classify: decision procedure: %w", err)
	}

	return c, nil
}

// Catalog returns the catalog feature vectors are extracted with.
func (c *Classifier) Catalog() *feature.Catalog {
	return c.catalog
}

// Classify extracts the feature vector of pin from img and classifies it.
func (c *Classifier) Classify(img *bitstream.Image, pin string) (*Classification, error) {
	vec, err := c.ext.Extract(img, pin, c.catalog)
	if err != nil {
		return nil, err
	}
	return c.ClassifyVector(pin, vec)
}

// ClassifyVector classifies an already extracted feature vector of pin.
func (c *Classifier) ClassifyVector(pin string, vec feature.Vector) (*Classification, error) {
	if len(vec) != c.catalog.Len() {
		return nil, fmt.Errorf("classify: pin %s: vector has %d bits, catalog %d", pin, len(vec), c.catalog.Len())
	}

	role := c.roles.Role(pin)
	cl := &Classification{
		Pin:    pin,
		Role:   role,
		PullUp: vec[c.pullUp] != 0,
		Output: pick(vec, c.output).Any(),
	}

	if role == pininfo.RoleDiffRx {
		cl.Differential = vec[c.diffRx] != 0
	} else {
		cl.Differential = vec[c.diffTx] != 0
	}

	if cl.Differential {
		cl.Input = vec[c.diffInput] == 0
	} else {
		cl.Input = vec[c.input] == 0
	}

	label, err := c.proc.Predict(pick(vec, c.standard))
	if err != nil {
		return nil, fmt.Errorf("classify: pin %s: %w", pin, err)
	}
	cl.IOStandard = label

	if strings.HasPrefix(label, c.cfg.TerminationFamily) {
		cl.Termination = matchTermination(pick(vec, c.termination))
	}

	level.Debug(c.logger).Log("msg", "classified pin", "pin", pin, "role", role,
		"standard", label, "direction", cl.Direction(), "bits", fmt.Sprint([]uint8(vec)))
	return cl, nil
}

func matchTermination(bits feature.Vector) Termination {
	switch {
	case bits.Equal(0, 0, 1):
		return TermDefault
	case bits.Equal(1, 1, 0):
		return TermClass12
	default:
		return TermNone
	}
}

func pick(vec feature.Vector, idxs []int) feature.Vector {
	out := make(feature.Vector, len(idxs))
	for i, idx := range idxs {
		out[i] = vec[idx]
	}
	return out
}
