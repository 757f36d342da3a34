package types

// Language selects the response language of the AI collaborators.
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// Area is the facial region a breakdown step targets.
type Area string

const (
	AreaFace  Area = "Face"
	AreaBrows Area = "Brows"
	AreaEyes  Area = "Eyes"
	AreaLips  Area = "Lips"
)

// BoundingBox is an axis-aligned rectangle in a normalized 0-1000
// integer coordinate space, xmin<=xmax and ymin<=ymax.
type BoundingBox struct {
	Xmin int `json:"xmin"`
	Ymin int `json:"ymin"`
	Xmax int `json:"xmax"`
	Ymax int `json:"ymax"`
}

// FaceFeatures holds the three facial-region boxes produced by the
// landmark adapter.
type FaceFeatures struct {
	Eyes  BoundingBox `json:"eyes"`
	Brows BoundingBox `json:"brows"`
	Lips  BoundingBox `json:"lips"`
}

// FeatureScore is one radar-chart data point of a face analysis.
// Value is 0-100, FullMark the scale maximum.
type FeatureScore struct {
	Subject  string  `json:"subject"`
	Value    float64 `json:"A"`
	FullMark float64 `json:"fullMark"`
}

// FaceAnalysis is the structured result of the analysis collaborator.
// Features is merged in separately from the landmark adapter and may
// be nil when no face was detected.
type FaceAnalysis struct {
	FaceShape string         `json:"faceShape"`
	SkinTone  string         `json:"skinTone"`
	EyeShape  string         `json:"eyeShape"`
	Summary   string         `json:"summary"`
	Scores    []FeatureScore `json:"scores"`
	Features  *FaceFeatures  `json:"features,omitempty"`
}

// MakeupStyle is one catalog entry. Tags are free-text and language
// mixed; they are the only matching key.
type MakeupStyle struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// BreakdownStep is one instruction of a generated styling plan,
// opaque once received from the plan collaborator.
type BreakdownStep struct {
	Area        Area   `json:"area"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Brand       string `json:"brand"`
	Product     string `json:"productRecommendation"`
	Shade       string `json:"shade"`
	ProductURL  string `json:"productUrl"`
	ColorHex    string `json:"colorHex"`
}

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of the consultation transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Extraction is the structured half of a consultation reply: the
// conversational model's reply text plus the fields it pulled out of
// the user's free text.
type Extraction struct {
	ReplyText   string   `json:"reply_text"`
	Concerns    []string `json:"extracted_concerns"`
	Styles      []string `json:"extracted_style"`
	Environment string   `json:"extracted_environment"`
	Ready       bool     `json:"is_ready"`
}

// TryOnRecord is one saved look in the history store.
type TryOnRecord struct {
	ID        string `json:"id"`
	ImageURL  string `json:"processed_image_url"`
	StyleName string `json:"style_name"`
	CreatedAt string `json:"created_at"`
}
