package models

// DataQuality counts the rows each stage excluded. Nothing is dropped
// without being tallied here.
type DataQuality struct {
	UnmatchedCodes          int // municipality codes with no metadata row
	UnmatchedAccidents      int // accidents belonging to those codes
	DuplicateMunicipalities int // metadata rows ignored by first-occurrence dedup
	PopulationSkipped       int // rows without a positive population
	FleetSkipped            int // rows without a positive vehicle fleet
	PeriodDropped           int // unparseable dates
	HourDropped             int // unparseable times of day
	NullCoordinates         int // accidents left off the map
}

// StateReport carries every derived view for one state filter. It is
// computed fresh for each selection and discarded afterwards.
type StateReport struct {
	Filter      StateFilter
	Granularity Granularity
	TopN        int

	// NoData is set when the filter matched no accidents. All views are
	// then empty and the presentation layer shows an explicit message.
	NoData bool

	TotalAccidents int

	// Listing is the per-city table: inner join, sorted by accidents.
	Listing          []MunicipalityStat
	TopByAccidents   []MunicipalityStat
	TopPerPopulation []MunicipalityStat
	TopPerVehicles   []MunicipalityStat

	Periods     []PeriodCount
	WeekdayHour WeekdayHourMatrix
	Correlation CorrelationMatrix

	// Accidents is the filtered accident set, kept for the map view.
	Accidents []AccidentRecord

	Quality DataQuality
}
