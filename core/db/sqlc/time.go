package sqlc

import "time"

func nowFunc() time.Time {
	return time.Now().UTC()
}
