package interfaces

import "net/http"

// ApplicationContext carries the parsed request payload and ambient request
// metadata from the transport layer into controllers.
type ApplicationContext[T interface{}] struct {
	Ctx      interface{}
	Body     *T
	Keys     map[string]any
	Header   http.Header
	Param    map[string]any
	DeviceID string
}

func (ac *ApplicationContext[T]) GetHeader(key string) string {
	if ac.Header == nil {
		return ""
	}
	return ac.Header.Get(key)
}

func (ac *ApplicationContext[T]) GetStringParameter(key string) string {
	if ac.Param == nil {
		return ""
	}
	value, ok := ac.Param[key].(string)
	if !ok {
		return ""
	}
	return value
}
