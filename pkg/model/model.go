package model

import "time"

// Visitor status values.
const (
	StatusPending   = "pendente"
	StatusContacted = "entrou em contato"
	StatusBadNumber = "erro número"
)

// ValidStatuses lists every accepted visitor status.
var ValidStatuses = []string{StatusPending, StatusContacted, StatusBadNumber}

// Address mirrors the address block filled from the CEP lookup.
type Address struct {
	CEP         string `json:"cep,omitempty" firestore:"cep,omitempty" gorm:"column:cep"`
	Rua         string `json:"rua,omitempty" firestore:"rua,omitempty" gorm:"column:rua"`
	Numero      string `json:"numero,omitempty" firestore:"numero,omitempty" gorm:"column:numero"`
	Complemento string `json:"complemento,omitempty" firestore:"complemento,omitempty" gorm:"column:complemento"`
	Bairro      string `json:"bairro,omitempty" firestore:"bairro,omitempty" gorm:"column:bairro"`
	Cidade      string `json:"cidade,omitempty" firestore:"cidade,omitempty" gorm:"column:cidade"`
	Estado      string `json:"estado,omitempty" firestore:"estado,omitempty" gorm:"column:estado"`
}

// Visitor is the core document stored in the `visitantes` collection.
// Dates are stored as YYYY-MM-DD; the aggregator still accepts the legacy layouts.
type Visitor struct {
	ID             string    `json:"id,omitempty" firestore:"id,omitempty" gorm:"primaryKey;size:36"`
	Nome           string    `json:"nome" firestore:"nome" gorm:"not null"`
	Sexo           string    `json:"sexo,omitempty" firestore:"sexo,omitempty"`
	DataNascimento string    `json:"data_nascimento,omitempty" firestore:"data_nascimento,omitempty"`
	DataVisita     string    `json:"data_visita,omitempty" firestore:"data_visita,omitempty"`
	GFResponsavel  string    `json:"gf_responsavel,omitempty" firestore:"gf_responsavel,omitempty" gorm:"column:gf_responsavel"`
	Telefone       string    `json:"telefone,omitempty" firestore:"telefone,omitempty"`
	Endereco       Address   `json:"endereco" firestore:"endereco" gorm:"embedded;embeddedPrefix:endereco_"`
	Status         string    `json:"status,omitempty" firestore:"status,omitempty" gorm:"index"`
	Observacoes    string    `json:"observacoes,omitempty" firestore:"observacoes,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty" firestore:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" firestore:"updated_at,omitempty"`
}

// TableName pins the SQL table name.
func (Visitor) TableName() string { return "visitantes" }

// User is a staff account. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id,omitempty" firestore:"id,omitempty" gorm:"primaryKey;size:36"`
	Nome         string    `json:"nome" firestore:"nome" gorm:"not null"`
	Email        string    `json:"email" firestore:"email" gorm:"uniqueIndex;not null"`
	Role         string    `json:"role" firestore:"role" gorm:"not null"`
	PasswordHash string    `json:"-" firestore:"password_hash" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"created_at,omitempty" firestore:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" firestore:"updated_at,omitempty"`
}

// TableName pins the SQL table name.
func (User) TableName() string { return "usuarios" }

// CategoryCount is one labeled slice of a chart.
type CategoryCount struct {
	Label string `json:"label" firestore:"label"`
	Count int    `json:"count" firestore:"count"`
}

// CategoryShare is a labeled slice expressed as a percentage of the total.
type CategoryShare struct {
	Label   string  `json:"label" firestore:"label"`
	Count   int     `json:"count" firestore:"count"`
	Percent float64 `json:"percent" firestore:"percent"`
}

// StatsBundle holds every dashboard distribution computed from one visitor list.
type StatsBundle struct {
	Total        int             `json:"total" firestore:"total"`
	ByLeader     []CategoryShare `json:"por_gf" firestore:"por_gf"`
	ByGender     []CategoryCount `json:"por_sexo" firestore:"por_sexo"`
	ByAgeBracket []CategoryCount `json:"por_faixa_etaria" firestore:"por_faixa_etaria"`
	ByCity       []CategoryCount `json:"por_cidade" firestore:"por_cidade"`
	ByVisitDate  []CategoryCount `json:"por_data_visita" firestore:"por_data_visita"`
	GeneratedAt  time.Time       `json:"generated_at" firestore:"generated_at"`
}

// BackfillRunStats stores aggregated counters for an address backfill job.
type BackfillRunStats struct {
	Found   int `json:"found" firestore:"found"`
	Updated int `json:"updated" firestore:"updated"`
	Skipped int `json:"skipped" firestore:"skipped"`
	Failed  int `json:"failed" firestore:"failed"`
}

// Backfill run status values.
const (
	RunRunning   = "running"
	RunSuccess   = "success"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// BackfillRun tracks the lifecycle of an address backfill execution.
type BackfillRun struct {
	RunID       string           `json:"run_id" firestore:"run_id"`
	Status      string           `json:"status" firestore:"status"`
	Stats       BackfillRunStats `json:"stats" firestore:"stats"`
	StartedAt   time.Time        `json:"started_at" firestore:"started_at"`
	FinishedAt  time.Time        `json:"finished_at,omitempty" firestore:"finished_at,omitempty"`
	ErrorSample []ErrorSample    `json:"errors_sample,omitempty" firestore:"errors_sample,omitempty"`
}

// ErrorSample captures a subset of errors for observability without heavy logging.
type ErrorSample struct {
	VisitorID string `json:"visitor_id" firestore:"visitor_id"`
	Reason    string `json:"reason" firestore:"reason"`
}
