package transfer

type LinkedInRegisterUploadRequest struct {
	RegisterUploadRequest LinkedInRegisterUpload `json:"registerUploadRequest"`
}

type LinkedInRegisterUpload struct {
	Recipes              []string                      `json:"recipes"`
	Owner                string                        `json:"owner"`
	ServiceRelationships []LinkedInServiceRelationship `json:"serviceRelationships"`
}

type LinkedInServiceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type LinkedInRegisterUploadResponse struct {
	Value LinkedInUploadValue `json:"value"`
}

type LinkedInUploadValue struct {
	Asset           string                  `json:"asset"`
	UploadMechanism LinkedInUploadMechanism `json:"uploadMechanism"`
}

type LinkedInUploadMechanism struct {
	MediaUploadHTTPRequest LinkedInMediaUploadRequest `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
}

type LinkedInMediaUploadRequest struct {
	UploadURL string `json:"uploadUrl"`
}

type LinkedInShareText struct {
	Text string `json:"text"`
}

type LinkedInShareMedia struct {
	Status      string            `json:"status"`
	Description LinkedInShareText `json:"description"`
	Media       string            `json:"media"`
	Title       LinkedInShareText `json:"title"`
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInShareText    `json:"shareCommentary"`
	ShareMediaCategory string               `json:"shareMediaCategory"`
	Media              []LinkedInShareMedia `json:"media,omitempty"`
}

// LinkedInUGCPost is the nested UGC post payload. The specificContent and
// visibility keys are fully-qualified type names required by the API.
type LinkedInUGCPost struct {
	Author          string                          `json:"author"`
	LifecycleState  string                          `json:"lifecycleState"`
	SpecificContent map[string]LinkedInShareContent `json:"specificContent"`
	Visibility      map[string]string               `json:"visibility"`
}

type LinkedInUGCPostResponse struct {
	ID string `json:"id"`
}
