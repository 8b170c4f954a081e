package cache

// Keyer generates cache keys.
type Keyer interface {
	// PointKey identifies one transport query.
	PointKey(opts PointKeyOpts) string
}

// PointKeyOpts holds everything a transmission value depends on.
type PointKeyOpts struct {
	Model  string             // Model fingerprint
	Energy float64            // Fermi energy
	Params map[string]float64 // Fully resolved parameter assignment
	To     int
	From   int
}

// DefaultKeyer hashes key options into "point:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PointKey implements [Keyer].
func (DefaultKeyer) PointKey(opts PointKeyOpts) string {
	return "point:" + pointDigest(opts)
}
