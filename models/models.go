package models

// incoming request for POST /api/info
type InfoRequest struct {
	URL string `json:"url"`
}

// DownloadRequest is the body of POST /api/download.
// Quality is a quality label, "audio", or empty for the highest quality.
type DownloadRequest struct {
	URL       string `json:"url"`
	Quality   string `json:"quality"`
	Format    string `json:"format"`
	RequestID string `json:"request_id"`
}

// Thumbnail as reported by a provider, ordered from smallest to largest.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  uint   `json:"width"`
	Height uint   `json:"height"`
}

// RawFormat is one encoding exactly as a provider reports it.
type RawFormat struct {
	Itag          int
	SourceID      string // provider specific selector, e.g. yt-dlp format_id
	QualityLabel  string // video resolution label, empty for audio-only
	AudioQuality  string
	MimeType      string
	HasVideo      bool
	HasAudio      bool
	Bitrate       int
	ContentLength int64
	ExactSize     bool // ContentLength is the real byte count, not an estimate
}

// RawVideo is the provider's metadata for one video. Formats must be ranked
// best first by the provider.
type RawVideo struct {
	ID            string
	Title         string
	LengthSeconds int
	Thumbnails    []Thumbnail
	Author        string
	ViewCount     int64
	UploadDate    string
	Description   string
	Formats       []RawFormat
}

// FormatDescriptor is the uniform view of one encoding sent to clients.
type FormatDescriptor struct {
	Itag      int    `json:"itag"`
	Quality   string `json:"quality"`
	Container string `json:"container"`
	HasVideo  bool   `json:"hasVideo"`
	HasAudio  bool   `json:"hasAudio"`
	Codec     string `json:"codec"`
	Bitrate   int    `json:"bitrate"`
	Size      string `json:"size"`
	MimeType  string `json:"mimeType"`

	ContentLength int64  `json:"-"`
	ExactSize     bool   `json:"-"`
	SourceID      string `json:"-"`
}

// VideoMetadata is the success payload of POST /api/info.
type VideoMetadata struct {
	Success            bool               `json:"success"`
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	DurationSeconds    int                `json:"duration_seconds"`
	Duration           string             `json:"duration"`
	Thumbnail          string             `json:"thumbnail"`
	Author             string             `json:"author"`
	Views              string             `json:"views"`
	UploadDate         string             `json:"uploadDate"`
	Description        string             `json:"description"`
	AvailableQualities []string           `json:"available_qualities"`
	AvailableLanguages []string           `json:"available_languages"`
	IsPlaylist         bool               `json:"is_playlist"`
	Formats            []FormatDescriptor `json:"formats"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Progress is published while a download is relayed.
type Progress struct {
	RequestID       string `json:"request_id,omitempty"`
	Status          string `json:"status"` // "downloading", "completed", "error"
	DownloadedBytes int64  `json:"downloaded_bytes"`
	TotalBytes      int64  `json:"total_bytes"`
	Percent         int    `json:"percent"`
	Message         string `json:"message,omitempty"`
}

// PlatformInfo describes the platform characteristics.
type PlatformInfo struct {
	Platform    string // e.g. "YouTube"
	IsSupported bool
	Reason      string // If unsupported or unknown, reason why
}

// YTDLPInfo matches the subset of `yt-dlp -J` output we consume.
type YTDLPInfo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Uploader    string  `json:"uploader"`
	Channel     string  `json:"channel"`
	Duration    float64 `json:"duration"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Thumbnails  []struct {
		URL    string `json:"url"`
		Width  uint   `json:"width"`
		Height uint   `json:"height"`
	} `json:"thumbnails"`
	Formats []YTDLPFormat `json:"formats"`
}

type YTDLPFormat struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note"`
	Ext            string  `json:"ext"`
	Vcodec         string  `json:"vcodec"`
	Acodec         string  `json:"acodec"`
	Height         int     `json:"height"`
	TBR            float64 `json:"tbr"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}
