package model

import "time"

// Operator is a transport company owning vehicles.
type Operator struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Code      string    `gorm:"index;size:64" json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Driver holds the driver identity and license data.
type Driver struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id"`
	FullName      string     `gorm:"size:256;not null" json:"fullName"`
	Phone         string     `gorm:"size:32" json:"phone"`
	LicenseNumber string     `gorm:"size:64" json:"licenseNumber"`
	LicenseExpiry *time.Time `json:"licenseExpiry"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Route is a fixed line served from this station.
type Route struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"size:256;not null" json:"name"`
	Type          string    `gorm:"size:64" json:"type"`
	DestinationID *string   `gorm:"index;size:64" json:"destinationId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Location is a station or stop a route can terminate at.
type Location struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Code      string    `gorm:"size:64" json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is a station staff member acting on dispatch records.
type User struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	FullName string `gorm:"size:256" json:"fullName"`
}
