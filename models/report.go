package models

// InspectionReport holds summary statistics over a set of restaurant records.
type InspectionReport struct {
	TotalRestaurants int
	Inspected        int
	TotalInspections int
	// MeanAverageScore is the mean of the applicable per-restaurant averages.
	MeanAverageScore AverageScore
	HighestScore     *RestaurantRecord
}
