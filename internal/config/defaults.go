package config

const (
	DefaultWidth          = 240
	DefaultHeight         = 240
	DefaultContentScale   = 0.98
	DefaultCircleInterval = 5
	MinCircleInterval     = 1
	MaxCircleInterval     = 60
	DefaultDegreeSpacing  = 16
	DefaultAddress        = "http://localhost:11987"
	DefaultUsername       = "CCAdmin"
)

var (
	green      = MustHex("#00ff00")
	orange     = MustHex("#ffa500")
	darkOrange = MustHex("#ff8c00")
	red        = MustHex("#ff0000")
)

// DefaultBands are the band colours shared by every default threshold set.
var DefaultBands = [4]Color{green, orange, darkOrange, red}

// Default returns a fully populated configuration.
func Default() Config {
	return Config{
		Display: Display{
			Width:                DefaultWidth,
			Height:               DefaultHeight,
			Shape:                "auto",
			Mode:                 "dual",
			CircleSwitchInterval: DefaultCircleInterval,
			Brightness:           80,
			Orientation:          0,
			Format:               "png",
		},
		Layout: Layout{
			BarHeight:       24,
			BarWidthPercent: 98,
			BarGap:          12,
			BorderWidth:     1.5,
			DegreeSpacing:   DefaultDegreeSpacing,
			ValueSpacing:    8,
		},
		Colors: Colors{
			Background:    MustHex("#000000"),
			BarBackground: MustHex("#343434"),
			BarBorder:     MustHex("#c0c0c0"),
			Value:         MustHex("#ffffff"),
			Label:         MustHex("#c8c8c8"),
		},
		Font: Font{
			SizeValue: 100,
			SizeLabel: 30,
		},
		Thresholds: Thresholds{
			CPU:    ThresholdSet{T: [3]float64{55, 65, 75}, C: DefaultBands},
			GPU:    ThresholdSet{T: [3]float64{55, 65, 75}, C: DefaultBands},
			Liquid: ThresholdSet{T: [3]float64{25, 28, 31}, C: DefaultBands},
		},
		MaxScale: MaxScale{
			CPU:    115,
			GPU:    115,
			Liquid: 50,
			RPM:    5000,
			Duty:   100,
			Watts:  500,
			Freq:   6000,
		},
		Slots: Slots{
			Up:   "cpu",
			Mid:  "none",
			Down: "gpu",
		},
		Daemon: Daemon{
			Address:  DefaultAddress,
			Username: DefaultUsername,
			Timeout:  5,
		},
		Runtime: Runtime{
			RefreshInterval: 2.5,
			SmoothingWindow: 1,
			Source:          "daemon",
		},
	}
}
