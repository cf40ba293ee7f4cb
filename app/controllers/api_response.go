package controllers

// ApiResponse is the envelope for the query and admin endpoints. Callback
// endpoints never use it; Safaricom expects the fixed ack shape there.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OkResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) ApiResponse {
	return ApiResponse{Success: false, Message: message}
}
