package utils

import (
	"fmt"
	"os"
)

const (
	ColorDarkGray = 90
)

func Colorize(s interface{}, c int, colored bool) string {
	if !colored || os.Getenv("NO_COLOR") != "" || c == 0 {
		return fmt.Sprintf("%v", s)
	}

	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
