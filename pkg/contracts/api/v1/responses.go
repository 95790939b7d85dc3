package v1

// StatusSuccess is the status of every successful JSON answer
const StatusSuccess = "success"

// Response is the envelope of the JSON section and workbook endpoints.
// Failures are RFC 7807 problem documents instead.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}
