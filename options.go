package tuncore

import (
	"fmt"
	"net"
	"time"

	"github.com/opd-ai/tuncore/config"
	"github.com/opd-ai/tuncore/limits"
	"github.com/opd-ai/tuncore/selection"
	"github.com/opd-ai/tuncore/transform"
)

// Options contains the configuration for an Edge.
type Options struct {
	// Transform protects payloads on the wire: transform.IDNull or
	// transform.IDChaCha20.
	Transform transform.ID
	// Compress runs payloads through LZ4 before Transform.
	Compress bool
	// Key is the pass-phrase for ciphers. It is only read during New.
	Key []byte

	Strategy         selection.Strategy
	MaxPacketSize    int
	RoundInterval    time.Duration
	HeaderEncryption bool

	// Supernodes are registered during New.
	Supernodes []Supernode

	// Observers, typically a *metrics.Collector. May be nil.
	TransformObserver transform.Observer
	SelectionObserver selection.Observer

	// TimeProvider overrides the wall clock.
	TimeProvider selection.TimeProvider

	// Registry supplies the transforms. It defaults to the shared
	// transform.DefaultRegistry and is not closed by the Edge.
	Registry *transform.Registry
}

// Supernode is a statically configured supernode.
type Supernode struct {
	Addr net.Addr
	MAC  net.HardwareAddr
}

// NewOptions returns a new Options with default values.
//
//export TunOptionsNew
func NewOptions() *Options {
	return &Options{
		Transform:     transform.IDNull,
		Strategy:      selection.StrategyLoad,
		MaxPacketSize: limits.MaxPacketSize,
		RoundInterval: config.DefaultRoundInterval,
		TimeProvider:  selection.DefaultTimeProvider{},
		Registry:      transform.DefaultRegistry(),
	}
}

// OptionsFromConfig translates a validated configuration. Supernode
// addresses are resolved as UDP endpoints.
func OptionsFromConfig(cfg config.Config) (*Options, error) {
	opts := NewOptions()
	if err := cfg.ValidateWith(opts.Registry); err != nil {
		return nil, err
	}

	d, _ := opts.Registry.ByName(cfg.Transform)
	strategy, _ := selection.ParseStrategy(cfg.Strategy)

	opts.Transform = d.ID
	opts.Compress = cfg.CompressionEnabled()
	opts.Key = []byte(cfg.Key)
	opts.Strategy = strategy
	opts.MaxPacketSize = cfg.MaxPacketSize
	opts.RoundInterval = cfg.RoundInterval
	opts.HeaderEncryption = cfg.HeaderEncryption

	for i, sn := range cfg.Supernodes {
		addr, err := net.ResolveUDPAddr("udp", sn.Address)
		if err != nil {
			return nil, fmt.Errorf("supernodes[%d]: %w", i, err)
		}
		var hw net.HardwareAddr
		if sn.MAC != "" {
			// format checked by Validate
			hw, _ = net.ParseMAC(sn.MAC)
		}
		opts.Supernodes = append(opts.Supernodes, Supernode{Addr: addr, MAC: hw})
	}
	return opts, nil
}

func (o *Options) validate(reg *transform.Registry) error {
	d, ok := reg.Lookup(o.Transform)
	if !ok {
		return fmt.Errorf("%w: %s", transform.ErrUnknownTransform, o.Transform)
	}
	if d.IsCompress {
		return fmt.Errorf("transform %s is a compressor, use Compress", d.Name)
	}
	if !d.NoEncryption && len(o.Key) == 0 {
		return fmt.Errorf("transform %s requires a key", d.Name)
	}
	if o.MaxPacketSize < 1 || o.MaxPacketSize > limits.MaxPacketSize {
		return fmt.Errorf("%w: max packet size %d outside 1..%d",
			limits.ErrPacketTooLarge, o.MaxPacketSize, limits.MaxPacketSize)
	}
	if o.RoundInterval <= 0 {
		return fmt.Errorf("round interval must be positive, got %s", o.RoundInterval)
	}
	if _, err := selection.ParseStrategy(o.Strategy.String()); err != nil {
		return err
	}
	return nil
}
