package logging

import (
	"bufio"
	"os"
	"strings"
)

// LastMsgFromFile returns the last non-empty line of logfile.
// Can provide an arbitrary format function to format the line.
func LastMsgFromFile(logfile string, format ...func([]byte) (string, error)) (lastMsg string, err error) {
	file, err := os.Open(logfile)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		if len(format) > 0 {
			lastMsg, err = format[0](scanner.Bytes())
			if err != nil {
				return "", err
			}
		} else {
			lastMsg = scanner.Text()
		}
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return lastMsg, nil
}
