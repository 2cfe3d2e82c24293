package phit

// Default tuning parameters. The rounds and the router domain are empirical
// calibration values for the stock workload on a 24 MHz generic timer, not
// derived constants; the stat package holds the instruments for re-deriving
// them on other platforms.
const (
	DefaultSeedRounds        = 16
	DefaultHarvestRounds     = 4
	DefaultMaxDelta          = 2048
	DefaultOverflowTolerance = 0.01
)

// Option is a functional option shared by NewSampler, NewPool, NewPRNG and
// NewRouter. Each constructor consumes the options it understands and
// ignores the rest, so one option set can configure a whole stack of
// components the same way.
type Option func(*config)

type config struct {
	clock         func() uint64
	work          Workload
	seedRounds    int
	harvestRounds int
	maxDelta      int
	tolerance     float64
}

func defaultConfig() *config {
	return &config{
		clock:         nowNS,
		work:          ALUWorkload(DefaultWorkIters),
		seedRounds:    DefaultSeedRounds,
		harvestRounds: DefaultHarvestRounds,
		maxDelta:      DefaultMaxDelta,
		tolerance:     DefaultOverflowTolerance,
	}
}

func buildConfig(opts []Option) *config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = nowNS
	}
	if c.work == nil {
		c.work = ALUWorkload(DefaultWorkIters)
	}
	if c.seedRounds <= 0 {
		c.seedRounds = DefaultSeedRounds
	}
	if c.harvestRounds <= 0 {
		c.harvestRounds = DefaultHarvestRounds
	}
	return c
}

// WithClock replaces the monotonic timer. The function must return a
// non-decreasing nanosecond count. Production code has no reason to change
// the default; tests inject synthetic clocks here so statistical assertions
// become reproducible.
func WithClock(clock func() uint64) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithWorkload replaces the timed workload.
func WithWorkload(w Workload) Option {
	return func(c *config) {
		c.work = w
	}
}

// WithSeedRounds sets how many harvests NewPRNG runs before the generator is
// considered seeded. Non-positive values fall back to DefaultSeedRounds.
func WithSeedRounds(n int) Option {
	return func(c *config) {
		c.seedRounds = n
	}
}

// WithHarvestRounds sets how many harvests each Extract folds into the pool
// before producing output. Non-positive values fall back to
// DefaultHarvestRounds.
func WithHarvestRounds(n int) Option {
	return func(c *config) {
		c.harvestRounds = n
	}
}

// WithMaxDelta sets the exclusive upper bound, in nanoseconds, of the
// router's calibration histogram. Deltas at or above the bound are clamped
// into the last bin. NewRouter rejects bounds below 2.
func WithMaxDelta(n int) Option {
	return func(c *config) {
		c.maxDelta = n
	}
}

// WithOverflowTolerance sets the fraction of calibration deltas allowed to
// land outside the histogram domain before Calibrate reports
// ErrDomainOverflow. NewRouter rejects values outside [0, 1].
func WithOverflowTolerance(frac float64) Option {
	return func(c *config) {
		c.tolerance = frac
	}
}
