package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID identifying the machine.
// The hostname is used if the ID is not available.
func MachineID() string {
	id, err := machineid.ProtectedID("vlc")
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if id, err = os.Hostname(); err != nil {
		return "vlc"
	}
	return id
}
