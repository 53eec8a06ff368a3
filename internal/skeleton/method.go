package skeleton

import (
	"fmt"
	"strings"
)

// Method selects the thinning algorithm
type Method int

const (
	// ZhangSuen is the Zhang-Suen parallel thinning algorithm
	ZhangSuen Method = iota
	// GuoHall is the Guo-Hall parallel thinning algorithm
	GuoHall
)

func (m Method) String() string {
	switch m {
	case ZhangSuen:
		return "zhang_suen"
	case GuoHall:
		return "guo_hall"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Valid reports whether m is a known method
func (m Method) Valid() bool {
	return m == ZhangSuen || m == GuoHall
}

// ParseMethod parses a method name such as "zhang_suen" or "gh"
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "zhang_suen", "zhangsuen", "zhang-suen", "zs":
		return ZhangSuen, nil
	case "guo_hall", "guohall", "guo-hall", "gh":
		return GuoHall, nil
	}
	return 0, fmt.Errorf("unknown thinning method: %q", name)
}

// MethodNames lists the canonical method names
func MethodNames() []string {
	return []string{ZhangSuen.String(), GuoHall.String()}
}
