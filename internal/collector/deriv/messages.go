package deriv

type authorizeRequest struct {
	Authorize string `json:"authorize"`
	ReqID     int    `json:"req_id,omitempty"`
}

type historyRequest struct {
	TicksHistory    string `json:"ticks_history"`
	Style           string `json:"style"`
	Granularity     int    `json:"granularity"`
	Start           int64  `json:"start"`
	End             int64  `json:"end"`
	AdjustStartTime int    `json:"adjust_start_time"`
	Count           int    `json:"count"`
	ReqID           int    `json:"req_id,omitempty"`
}

type apiResponse struct {
	MsgType string      `json:"msg_type"`
	Error   *apiError   `json:"error"`
	Candles []apiCandle `json:"candles"`
	ReqID   int         `json:"req_id"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiCandle struct {
	Epoch int64   `json:"epoch"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}
