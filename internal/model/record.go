package model

// Record is a persisted registry entry.
// This is a pure domain model with no database-specific dependencies or tags.
// Records are created only by a successful run of the admission pipeline and
// are immutable afterwards: no update, no delete.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	LastName    string `json:"apellido"`
	RUT         string `json:"rut"`
	Region      string `json:"region"`
	Comune      string `json:"comuna"`
	VisibleDate string `json:"fechaVisible"`
	SystemDate  int64  `json:"fechaSistema"`
}
