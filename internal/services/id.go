package services

import "github.com/oklog/ulid/v2"

func defaultIDGenerator() string {
	return ulid.Make().String()
}
