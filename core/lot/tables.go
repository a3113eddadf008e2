package lot

// ArrivalWeights holds the base probability, in percent, that a vehicle
// arrives at a given charge point during one interval, indexed by hour of
// day.
type ArrivalWeights [24]float64

// DefaultArrivalWeights is the empirical hourly arrival profile of the lot.
var DefaultArrivalWeights = ArrivalWeights{
	0.94, 0.94, 0.94, 0.94, 0.94, 0.94, 0.94, 0.94, 2.83, 2.83, 5.66, 5.66,
	5.66, 7.55, 7.55, 7.55, 10.38, 10.38, 10.38, 4.72, 4.72, 4.72, 0.94, 0.94,
}

// Multiplier bounds in percent.
const (
	MinArrivalMultiplier = 20
	MaxArrivalMultiplier = 200
)

// probabilityScale is the resolution of the integer draw compared against
// probabilities pre-scaled by 100.
const probabilityScale = 10000

type demandBand struct {
	width    int
	demandKm float64
}

// demandBands is the empirical charging demand distribution on the
// 0..10000 scale, in cumulative order. The widths sum to 9997; the 3 unit
// remainder is served by the final 0 km fallthrough.
var demandBands = []demandBand{
	{294, 300},
	{490, 5},
	{490, 200},
	{882, 30},
	{980, 10},
	{1078, 100},
	{1176, 20},
	{1176, 50},
	{3431, 0},
}

// demandForDraw maps a scaled draw in [0,10000) to a demand in km.
func demandForDraw(draw int) float64 {
	acc := 0
	for _, b := range demandBands {
		acc += b.width
		if draw < acc {
			return b.demandKm
		}
	}
	return 0
}
