package env

import "fmt"

// Hostname returns the network name for the given device id, e.g. lsiwindmeter007.
func Hostname(deviceID int) string {
	return fmt.Sprintf("%s%03d", HostnamePrefix, deviceID)
}
