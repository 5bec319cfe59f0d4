package dispatch

import "strconv"

func itoaPort(port int) string {
	return strconv.Itoa(port)
}
