package models

import "time"

// ViewID identifies one photographed angle of the vehicle
type ViewID string

const (
	ViewFront ViewID = "front"
	ViewSide  ViewID = "side"
	ViewRear  ViewID = "rear"
)

// CanonicalViews is the fixed display and processing order of viewpoints
var CanonicalViews = []ViewID{ViewFront, ViewSide, ViewRear}

// Valid reports whether id is one of the canonical viewpoints
func (id ViewID) Valid() bool {
	return id.Rank() >= 0
}

// Rank returns the position of id in CanonicalViews, or -1
func (id ViewID) Rank() int {
	for i, v := range CanonicalViews {
		if v == id {
			return i
		}
	}
	return -1
}

// Label returns the human readable name of the viewpoint
func (id ViewID) Label() string {
	switch id {
	case ViewFront:
		return "Front View"
	case ViewSide:
		return "Side View"
	case ViewRear:
		return "Rear View"
	default:
		return "Unknown View"
	}
}

// Image is an encoded image payload
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Empty reports whether the payload carries no bytes
func (i Image) Empty() bool {
	return len(i.Data) == 0
}

// Extension returns the file extension matching the MIME type
func (i Image) Extension() string {
	switch i.MIMEType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusPending StatusKind = "pending"
	StatusError   StatusKind = "error"
)

// Status is the edit state of a single view
type Status struct {
	Kind   StatusKind `json:"kind"`
	Reason string     `json:"reason,omitempty"`
}

func Idle() Status    { return Status{Kind: StatusIdle} }
func Pending() Status { return Status{Kind: StatusPending} }

func Failed(reason string) Status {
	return Status{Kind: StatusError, Reason: reason}
}

// View is one tracked camera angle and its edit state.
// Original is fixed at bootstrap; Current is the base of the next edit.
type View struct {
	ID       ViewID `json:"id"`
	Label    string `json:"label"`
	Original Image  `json:"original"`
	Current  Image  `json:"current"`
	Status   Status `json:"status"`
}

// NewView builds a view whose current image equals the original
func NewView(id ViewID, img Image) View {
	return View{
		ID:       id,
		Label:    id.Label(),
		Original: img,
		Current:  img,
		Status:   Idle(),
	}
}

// Category is the kind of modification a user requested
type Category string

const (
	CategoryPaint      Category = "paint"
	CategoryWheels     Category = "wheels"
	CategoryBodyKit    Category = "bodykit"
	CategoryGraphics   Category = "graphics"
	CategoryBackground Category = "background"
)

// Categories lists every category in control panel order
var Categories = []Category{CategoryPaint, CategoryWheels, CategoryBodyKit, CategoryGraphics, CategoryBackground}

// Modification is a single user-issued edit intent
type Modification struct {
	Category     Category `json:"category" yaml:"category"`
	DisplayValue string   `json:"display_value" yaml:"display_value"`
	Instruction  string   `json:"instruction" yaml:"instruction"`
}

// EditorSession is an editing session served over HTTP
type EditorSession struct {
	ID        string        `json:"id"`
	Views     []ViewSummary `json:"views"`
	Busy      bool          `json:"busy"`
	Active    *Modification `json:"active_modification,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// ViewSummary describes a view without its image bytes
type ViewSummary struct {
	ID          ViewID `json:"id"`
	Label       string `json:"label"`
	Status      Status `json:"status"`
	Modified    bool   `json:"modified"`
	MIMEType    string `json:"mime_type"`
	CurrentURL  string `json:"current_url"`
	OriginalURL string `json:"original_url"`
}
