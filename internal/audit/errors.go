package audit

import "errors"

var ErrUnknownAction = errors.New("unknown audit action")
