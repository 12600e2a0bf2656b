package instagram

import (
	"crypto/sha256"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// Device is the identity this client presents to the platform. It is
// part of the exported session state so a resumed session looks like the
// same device that logged in; changing devices mid-session is a known
// challenge trigger.
type Device struct {
	DeviceID string `json:"device_id"`
	FamilyID string `json:"family_id"`
}

// NewDevice derives a stable device identity from the machine's
// hardware id so repeated logins from the same machine present the same
// device. Falls back to a random ephemeral identity when the machine id
// is unavailable.
func NewDevice() Device {
	return Device{
		DeviceID: stableUUID("gramctl-device").String(),
		FamilyID: stableUUID("gramctl-family").String(),
	}
}

func stableUUID(scope string) uuid.UUID {
	id, err := machineid.ID()
	if err != nil {
		return uuid.New()
	}

	hash := sha256.Sum256([]byte(scope + ":" + id))
	return uuid.UUID(hash[:16])
}
