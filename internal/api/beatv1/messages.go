// Package beatv1 defines the beat.v1 RPC messages and Connect bindings.
package beatv1

// PlaybackStatus is the coordinator state machine state on the wire.
type PlaybackStatus string

const (
	PlaybackStatusIdle    PlaybackStatus = "IDLE"
	PlaybackStatusPaused  PlaybackStatus = "PAUSED"
	PlaybackStatusPlaying PlaybackStatus = "PLAYING"
)

// PlaybackState is the observable playback state.
type PlaybackState struct {
	Status         PlaybackStatus `json:"status"`
	TrackID        string         `json:"track_id,omitempty"`
	Title          string         `json:"title,omitempty"`
	CoverArtURL    string         `json:"cover_art_url,omitempty"`
	Playing        bool           `json:"playing"`
	PositionMs     int64          `json:"position_ms"`
	DurationMs     int64          `json:"duration_ms"`
	PreviewLimitMs int64          `json:"preview_limit_ms"`
}

// NotificationType identifies a streamed notification.
type NotificationType string

const (
	NotificationTypeState        NotificationType = "STATE"
	NotificationTypeTrackLoaded  NotificationType = "TRACK_LOADED"
	NotificationTypePosition     NotificationType = "POSITION"
	NotificationTypePreviewLimit NotificationType = "PREVIEW_LIMIT"
	NotificationTypeTrackEnded   NotificationType = "TRACK_ENDED"
	NotificationTypeLoadFailed   NotificationType = "LOAD_FAILED"
	NotificationTypeClosed       NotificationType = "CLOSED"
	// NotificationTypePauseLocal asks a local player to stop its own output.
	NotificationTypePauseLocal NotificationType = "PAUSE_LOCAL"
)

// Notification is a single server-streamed message.
type Notification struct {
	Type       NotificationType `json:"type"`
	SequenceNo uint64           `json:"sequence_no"`
	State      *PlaybackState   `json:"state,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Beat is a catalog entry on the wire. FullAudioURL is only set for admins.
type Beat struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	BPM             int32    `json:"bpm"`
	Genres          []string `json:"genres"`
	Moods           []string `json:"moods"`
	CoverArtURL     string   `json:"cover_art_url,omitempty"`
	PreviewAudioURL string   `json:"preview_audio_url"`
	FullAudioURL    string   `json:"full_audio_url,omitempty"`
	Active          bool     `json:"active"`
	CreatedAt       string   `json:"created_at,omitempty"` // RFC3339
}

// PlayerService

type PlayRequest struct {
	BeatID string `json:"beat_id"`
}

type PauseRequest struct{}

type TogglePlayRequest struct{}

type SeekRequest struct {
	PositionMs int64 `json:"position_ms"`
}

type CloseRequest struct{}

type RelinquishRequest struct{}

type RelinquishResponse struct {
	WasPlaying bool           `json:"was_playing"`
	State      *PlaybackState `json:"state"`
}

type GetStateRequest struct{}

// StateResponse carries the state after a player operation.
type StateResponse struct {
	State *PlaybackState `json:"state"`
}

type SubscribeRequest struct {
	// LocalPlayer marks the subscriber as able to produce audio itself.
	LocalPlayer bool `json:"local_player"`
	// TrackID is the track the local player is bound to, if any.
	TrackID string `json:"track_id,omitempty"`
}

// CatalogService

type SearchBeatsRequest struct {
	Genre   string `json:"genre,omitempty"`
	Mood    string `json:"mood,omitempty"`
	Search  string `json:"search,omitempty"`
	BPMMin  int32  `json:"bpm_min,omitempty"`
	BPMMax  int32  `json:"bpm_max,omitempty"`
	Page    int32  `json:"page,omitempty"`
	Limit   int32  `json:"limit,omitempty"`
	OrderBy string `json:"order_by,omitempty"`
}

type SearchBeatsResponse struct {
	Beats []*Beat `json:"beats"`
	Total int32   `json:"total"`
	Page  int32   `json:"page"`
	Limit int32   `json:"limit"`
}

type GetBeatRequest struct {
	ID string `json:"id"`
}

type GetBeatResponse struct {
	Beat *Beat `json:"beat"`
}

type GetBeatsRequest struct {
	IDs []string `json:"ids"`
}

// GetBeatsResponse lists the requested active beats in request order.
// Unknown and withdrawn IDs are skipped.
type GetBeatsResponse struct {
	Beats []*Beat `json:"beats"`
}

type ListGenresRequest struct{}

type ListGenresResponse struct {
	Genres []string `json:"genres"`
	Moods  []string `json:"moods"`
}

// AdminService

type SetBeatActiveRequest struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

type SetBeatActiveResponse struct {
	Beat *Beat `json:"beat"`
}

type ListBeatsRequest struct {
	OrderBy string `json:"order_by,omitempty"`
}

type ListBeatsResponse struct {
	Beats []*Beat `json:"beats"`
}

// CreateBeatRequest adds a beat. An empty ID is generated by the server.
type CreateBeatRequest struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title"`
	BPM             int32    `json:"bpm"`
	Genres          []string `json:"genres,omitempty"`
	Moods           []string `json:"moods,omitempty"`
	CoverArtURL     string   `json:"cover_art_url,omitempty"`
	PreviewAudioURL string   `json:"preview_audio_url"`
	FullAudioURL    string   `json:"full_audio_url,omitempty"`
	Active          *bool    `json:"active,omitempty"` // Defaults to true
}

type CreateBeatResponse struct {
	Beat *Beat `json:"beat"`
}

// UpdateBeatRequest changes the fields that are set.
type UpdateBeatRequest struct {
	ID              string    `json:"id"`
	Title           *string   `json:"title,omitempty"`
	BPM             *int32    `json:"bpm,omitempty"`
	Genres          *[]string `json:"genres,omitempty"`
	Moods           *[]string `json:"moods,omitempty"`
	CoverArtURL     *string   `json:"cover_art_url,omitempty"`
	PreviewAudioURL *string   `json:"preview_audio_url,omitempty"`
	FullAudioURL    *string   `json:"full_audio_url,omitempty"`
	Active          *bool     `json:"active,omitempty"`
}

type UpdateBeatResponse struct {
	Beat *Beat `json:"beat"`
}

type DeleteBeatRequest struct {
	ID string `json:"id"`
}

type DeleteBeatResponse struct{}

type ListFiltersRequest struct{}

type FilterInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ReturnCodes []string `json:"return_codes"`
}

type ListFiltersResponse struct {
	Filters []*FilterInfo `json:"filters"`
}
