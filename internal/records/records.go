// Package records holds the data-transfer shapes mirrored from the hosted
// backend schema. They carry no behavior; all persistence and inference
// lives on the provider side.
package records

import "time"

// Doctor is a row in the doctors resource.
type Doctor struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	Experience     int      `json:"experience_years"`
	Rating         float64  `json:"rating"`
	Verified       bool     `json:"verified"`
	Languages      []string `json:"languages,omitempty"`
	AvatarURL      string   `json:"avatar_url,omitempty"`
	ConsultFee     float64  `json:"consultation_fee,omitempty"`
}

// PatientProfile is a row in the patients resource.
type PatientProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	BirthDate string    `json:"date_of_birth,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DoctorProfile is a row in the doctors resource scoped to an account.
type DoctorProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialization,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Appointment is a row in the appointments resource.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"` // requested, confirmed, completed, cancelled
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SymptomAnalysis is a row in the symptom_analyses resource holding the
// output of the provider's AI symptom function.
type SymptomAnalysis struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id,omitempty"`
	Symptoms   []string  `json:"symptoms"`
	Conditions []string  `json:"possible_conditions,omitempty"`
	Severity   string    `json:"severity,omitempty"` // low, moderate, high, critical
	Advice     string    `json:"advice,omitempty"`
	SeeDoctor  bool      `json:"see_doctor"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ChatSession is a row in the chat_sessions resource.
type ChatSession struct {
	ID        string        `json:"id"`
	PatientID string        `json:"patient_id,omitempty"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// ChatMessage is one turn inside a chat session.
type ChatMessage struct {
	Role      string    `json:"role"` // user or assistant
	Text      string    `json:"text"`
	Sentiment string    `json:"sentiment,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// MedicalImage is a row in the medical_images resource.
type MedicalImage struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id,omitempty"`
	FileName   string    `json:"file_name"`
	PublicURL  string    `json:"public_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// EmergencyAlert is a row in the emergency_alerts resource.
type EmergencyAlert struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id,omitempty"`
	Priority  string    `json:"priority"` // HIGH, MEDIUM, LOW
	Reason    string    `json:"reason"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"` // PENDING, DISPATCHED, RESOLVED
	CreatedAt time.Time `json:"created_at"`
}

// AuthUser is the authenticated user returned by the auth endpoints.
type AuthUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is the token bundle issued on sign-in.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
	UserType     string    `json:"-"` // derived: "patient" or "doctor"
	Profile      any       `json:"-"` // loaded profile record, nil when unavailable
}
