package databases

// Repositories bundles every repository built on one Store
type Repositories struct {
	Users     UserDatabase
	Cases     CaseDatabase
	Accidents AccidentDatabase
	Vehicles  VehicleDatabase
	Witnesses WitnessDatabase
	Evidence  EvidenceDatabase
	Claims    InsuranceClaimDatabase
}

// NewRepositories initializes every repository against store
func NewRepositories(store Store) Repositories {
	return Repositories{
		Users:     NewUserDatabase(store),
		Cases:     NewCaseDatabase(store),
		Accidents: NewAccidentDatabase(store),
		Vehicles:  NewVehicleDatabase(store),
		Witnesses: NewWitnessDatabase(store),
		Evidence:  NewEvidenceDatabase(store),
		Claims:    NewInsuranceClaimDatabase(store),
	}
}
