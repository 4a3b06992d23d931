package cannon

import "github.com/rpggio/cannonplot/internal/trajectory"

// SampleCannons returns the demo cannons stored into an empty database.
func SampleCannons() []CreateRequest {
	return []CreateRequest{
		{
			Author: "Steve",
			Name:   "Basic Cannon MK1",
			TrajectoryData: []trajectory.RangeSample{
				{Range: 100, Low: 12, Medium: 25, High: 18},
				{Range: 200, Low: 24, Medium: 48, High: 32},
				{Range: 300, Low: 36, Medium: 72, High: 48},
				{Range: 400, Low: 42, Medium: 86, High: 58},
				{Range: 500, Low: 48, Medium: 96, High: 64},
				{Range: 600, Low: 52, Medium: 104, High: 68},
				{Range: 700, Low: 54, Medium: 108, High: 72},
				{Range: 800, Low: 56, Medium: 112, High: 74},
				{Range: 900, Low: 58, Medium: 116, High: 76},
				{Range: 1000, Low: 60, Medium: 120, High: 78},
			},
		},
		{
			Author: "Alex",
			Name:   "Heavy Cannon V2",
			TrajectoryData: []trajectory.RangeSample{
				{Range: 150, Low: 18, Medium: 35, High: 28},
				{Range: 300, Low: 45, Medium: 88, High: 62},
				{Range: 450, Low: 68, Medium: 132, High: 94},
				{Range: 600, Low: 88, Medium: 168, High: 118},
				{Range: 750, Low: 102, Medium: 196, High: 138},
				{Range: 900, Low: 114, Medium: 218, High: 152},
				{Range: 1050, Low: 124, Medium: 236, High: 164},
				{Range: 1200, Low: 132, Medium: 248, High: 172},
				{Range: 1350, Low: 138, Medium: 256, High: 178},
			},
		},
		{
			Author: "Notch",
			Name:   "Precision Cannon Pro",
			TrajectoryData: []trajectory.RangeSample{
				{Range: 200, Low: 32, Medium: 58, High: 42},
				{Range: 350, Low: 58, Medium: 112, High: 78},
				{Range: 500, Low: 82, Medium: 158, High: 108},
				{Range: 650, Low: 102, Medium: 196, High: 134},
				{Range: 800, Low: 118, Medium: 226, High: 154},
				{Range: 950, Low: 132, Medium: 248, High: 168},
				{Range: 1100, Low: 142, Medium: 264, High: 178},
				{Range: 1250, Low: 148, Medium: 274, High: 184},
			},
		},
	}
}
