package physics

// Playfield constants. Units are playfield units (the standard table is
// 600 wide and 900 tall) and seconds; y grows downward.
const (
	BallRadius  = 6.0
	Gravity     = 620.0
	MaxSpeed    = 900.0
	MaxSubstep  = 1.0 / 240.0
	ContactSlop = 1.0

	WallRestitution   = 0.55
	PegRestitution    = 0.5
	BallRestitution   = 0.9
	BumperRestitution = 0.9
	BumperKick        = 260.0
	FlipperKick       = 520.0

	// ParkY is where inactive balls wait, far below the playfield.
	ParkY = 100000.0

	// FixtureBase is the first body id handed to fixtures and sensors. Ball
	// bodies use their pool slot and stay below it.
	FixtureBase = 1 << 16
)
