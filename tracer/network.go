package tracer

import (
	"strconv"
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/util"
)

var tcpStateNames = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
}

// ConnectionsForIP returns every current TCP connection (from
// /proc/net/tcp and /proc/net/tcp6) whose remote address matches ip,
// translated from hex into dotted/port form.
func ConnectionsForIP(ip string) []model.NetworkTrace {
	var out []model.NetworkTrace
	for _, path := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		lines, err := util.ReadFileLines(path)
		if err != nil || len(lines) < 2 {
			continue
		}
		for _, line := range lines[1:] {
			fields := strings.Fields(line)
			if len(fields) < 4 {
				continue
			}
			localAddr, localPort := decodeHexAddr(fields[1])
			remoteAddr, remotePort := decodeHexAddr(fields[2])
			if remoteAddr != ip {
				continue
			}
			out = append(out, model.NetworkTrace{
				LocalAddr:  localAddr,
				LocalPort:  localPort,
				RemoteAddr: remoteAddr,
				RemotePort: remotePort,
				State:      tcpStateNames[strings.ToUpper(fields[3])],
			})
		}
	}
	return out
}

// decodeHexAddr decodes a /proc/net/tcp "address:port" field (both
// little-endian hex) into a dotted-quad/port pair. IPv6 addresses are
// returned in their raw hex form — good enough for correlation, not
// meant for display.
func decodeHexAddr(field string) (addr string, port int) {
	parts := strings.SplitN(field, ":", 2)
	if len(parts) != 2 {
		return "", 0
	}
	port64, _ := strconv.ParseInt(parts[1], 16, 32)
	port = int(port64)

	hex := parts[0]
	if len(hex) == 8 {
		var octets [4]byte
		for i := 0; i < 4; i++ {
			b, _ := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			octets[3-i] = byte(b)
		}
		addr = strconv.Itoa(int(octets[0])) + "." + strconv.Itoa(int(octets[1])) + "." +
			strconv.Itoa(int(octets[2])) + "." + strconv.Itoa(int(octets[3]))
		return addr, port
	}
	return hex, port
}
