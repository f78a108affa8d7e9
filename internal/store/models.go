// Package store provides SQLite-backed persistence for the VaxiCare data
// layer: accounts, facilities, dependents, appointments, vaccine inventory
// and medical reports, all inside one on-device database file.
package store

// ActorKind distinguishes the two principal tables.
type ActorKind string

const (
	ActorAccount  ActorKind = "account"
	ActorFacility ActorKind = "facility"
)

// AppointmentStatus is the only mutable appointment field.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
)

// Account is an individual account holder.
// Password carries the caller-supplied plaintext on insert only; reads never
// populate it and the store persists a bcrypt hash.
type Account struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Facility is a healthcare facility account.
type Facility struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Location  string `json:"location,omitempty"`
	Category  string `json:"category,omitempty"`
	Vaccines  string `json:"vaccines,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Dependent is a family member owned by an account, or a synthetic patient
// record created for a walk-in (OwnerAccountID nil).
type Dependent struct {
	ID                int64  `json:"id"`
	OwnerAccountID    *int64 `json:"ownerAccountId,omitempty"`
	Name              string `json:"name"`
	Relation          string `json:"relation,omitempty"`
	Age               int64  `json:"age"`
	Gender            string `json:"gender,omitempty"`
	MedicalConditions string `json:"medicalConditions,omitempty"`
	CreatedAt         int64  `json:"createdAt"`
}

// Appointment links a patient to a facility for one vaccine slot.
// Walk-ins have a nil AccountID and a synthetic Dependent.
type Appointment struct {
	ID          int64             `json:"id"`
	AccountID   *int64            `json:"accountId,omitempty"`
	FacilityID  int64             `json:"facilityId"`
	DependentID *int64            `json:"dependentId,omitempty"`
	Vaccine     string            `json:"vaccine,omitempty"`
	Date        string            `json:"date"` // "2006-01-02"
	Time        string            `json:"time"` // "15:04"
	Status      AppointmentStatus `json:"status"`
	CreatedAt   int64             `json:"createdAt"`
}

// AppointmentDetail is the denormalized read shape: one flat row per
// appointment with nullable companion fields when the joined row is absent.
// External callers depend on these field names; keep them stable.
type AppointmentDetail struct {
	Appointment

	FacilityName        *string `json:"facilityName,omitempty"`
	AccountName         *string `json:"accountName,omitempty"`
	DependentName       *string `json:"dependentName,omitempty"`
	DependentRelation   *string `json:"dependentRelation,omitempty"`
	DependentAge        *int64  `json:"dependentAge,omitempty"`
	DependentGender     *string `json:"dependentGender,omitempty"`
	DependentConditions *string `json:"dependentConditions,omitempty"`
}

// WalkIn is the input for facility-side walk-in registration.
type WalkIn struct {
	FacilityID        int64  `json:"facilityId"`
	PatientName       string `json:"patientName"`
	PatientAge        *int64 `json:"patientAge,omitempty"`
	PatientGender     string `json:"patientGender,omitempty"`
	MedicalConditions string `json:"medicalConditions,omitempty"`
	Vaccine           string `json:"vaccine,omitempty"`
}

// InventoryItem is one stock row per (FacilityID, VaccineName).
// Quantity is an absolute count, not a delta ledger.
type InventoryItem struct {
	ID          int64  `json:"id"`
	FacilityID  int64  `json:"facilityId"`
	VaccineName string `json:"vaccineName"`
	Quantity    int64  `json:"quantity"`
	MinAge      int64  `json:"minAge"`
	MaxAge      int64  `json:"maxAge"`
	Description string `json:"description,omitempty"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// ReportFindings is the structured part of a medical report, persisted as
// JSON in a single column.
type ReportFindings struct {
	Diagnosis string `json:"diagnosis,omitempty"`
	Treatment string `json:"treatment,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Report is a free-standing medical report for a patient (dependent).
type Report struct {
	ID          int64          `json:"id"`
	PatientID   int64          `json:"patientId"`
	PatientName string         `json:"patientName,omitempty"`
	Description string         `json:"description,omitempty"`
	Findings    ReportFindings `json:"findings"`
	AuthorID    int64          `json:"authorId"`
	AuthorKind  ActorKind      `json:"authorKind"`
	Image       []byte         `json:"image,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
}

// Session is the result of a successful authentication: exactly one of
// Account/Facility is set, matching Kind.
type Session struct {
	Kind     ActorKind `json:"kind"`
	Account  *Account  `json:"account,omitempty"`
	Facility *Facility `json:"facility,omitempty"`
}

// Storer defines the data-layer surface consumed by the UI/service layers.
// Store is the sole implementation.
type Storer interface {
	// Accounts
	InsertAccount(a *Account) (*Account, error)
	GetAccountByEmail(email string) (*Account, error)
	ListAccounts() ([]*Account, error)

	// Facilities
	InsertFacility(f *Facility) (*Facility, error)
	GetFacilityByEmail(email string) (*Facility, error)
	ListFacilities() ([]*Facility, error)
	FindFacilitiesByText(query string) ([]*Facility, error)

	// Authentication
	Authenticate(email, password string, kind ActorKind) (*Session, error)
	Login(email, password string, kind ActorKind) (*Session, error)

	// Dependents
	AddDependent(d *Dependent, ownerID int64) (*Dependent, error)
	DependentsByAccount(accountID int64) ([]*Dependent, error)

	// Appointments
	CreateAppointment(a *Appointment) (*Appointment, error)
	CreateWalkInAppointment(w *WalkIn) (*AppointmentDetail, error)
	AppointmentsByAccount(accountID int64) ([]*AppointmentDetail, error)
	AppointmentsByFacility(facilityID int64) ([]*AppointmentDetail, error)
	SetAppointmentStatus(id int64, status AppointmentStatus) (bool, error)
	CancelAppointment(id int64) (bool, error)

	// Inventory
	UpsertInventory(facilityID int64, item *InventoryItem) (*InventoryItem, error)
	InventoryByFacility(facilityID int64) ([]*InventoryItem, error)
	FindAvailableInventory(facilityID int64, age *int64) ([]*InventoryItem, error)
	RemoveInventory(id int64) (bool, error)

	// Reports
	AddReport(r *Report) (*Report, error)
	ReportsByPatient(patientID int64) ([]*Report, error)
	ReportsByAuthor(authorID int64, kind ActorKind) ([]*Report, error)
	DeleteReport(id int64) (bool, error)

	// Administration
	MigrateMisclassifiedFacilities() (int, error)
	RepairFacilityTable() error
	PurgeAll() error

	// Lifecycle
	Close() error
}
