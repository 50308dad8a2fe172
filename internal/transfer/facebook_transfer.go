package transfer

type FacebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type FacebookPagesResponse struct {
	Data []FacebookPage `json:"data"`
}

type FacebookPhotoResponse struct {
	ID string `json:"id"`
}

type FacebookFeedResponse struct {
	ID string `json:"id"`
}

type FacebookAttachedMedia struct {
	MediaFbid string `json:"media_fbid"`
}

type FacebookErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FbtraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
