package model

import (
	"strings"
	"time"
)

type Address struct {
	Street   string  `json:"street"`
	AptName  string  `json:"aptName,omitempty"`
	Locality string  `json:"locality"`
	Zip      string  `json:"zip"`
	PhoneNo  string  `json:"phoneNo"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
}

type User struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"accountId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	FormattedAddress string    `json:"formattedAddress,omitempty"`
	Address          *Address  `json:"address,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (u User) DisplayName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}
