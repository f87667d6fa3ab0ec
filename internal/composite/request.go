package composite

import (
	"image"
	"time"
)

// SizeClass selects the composite resolution generated by the server.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
	SizeFull   SizeClass = "full"
)

// Valid reports whether s is one of the size classes the API accepts.
func (s SizeClass) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeFull:
		return true
	}
	return false
}

// Params are the caller-controlled knobs of a single composite fetch.
// The scheduler derives them from the active refresh configuration.
type Params struct {
	Token         string
	Marine        bool
	TwilightAngle float64 // degrees of solar depression, 0-18
	Size          SizeClass
	Quality       int // JPEG quality 0-100
}

// request is the wire payload for POST /api/v1/composite.
// Datetime is always null (server renders "now"), blur and force are fixed.
type request struct {
	Datetime      *time.Time `json:"datetime"`
	Marine        bool       `json:"marine"`
	TwilightAngle float64    `json:"twilight_angle"`
	BlurRadius    float64    `json:"blur_radius"`
	Resize        string     `json:"resize"`
	Quality       int        `json:"quality"`
	OutputFormat  string     `json:"output_format"`
	Force         bool       `json:"force"`
}

func newRequest(p Params) *request {
	return &request{
		Marine:        p.Marine,
		TwilightAngle: p.TwilightAngle,
		Resize:        string(p.Size),
		Quality:       p.Quality,
		OutputFormat:  "jpeg",
	}
}

// successBody is the JSON shape of a 2xx response.
type successBody struct {
	ImageData string `json:"image_data"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

// errorBody is the JSON shape of a 4xx/429 response.
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter *int   `json:"retry_after"`
}

// Result is a successful composite fetch: the decoded image and the time
// the fetch completed.
type Result struct {
	Image     image.Image
	FetchedAt time.Time
	Message   string
}
