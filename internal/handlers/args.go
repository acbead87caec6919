package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginger-beaver/OutlineBot/internal/router"
	"github.com/ginger-beaver/OutlineBot/internal/utils"
)

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: key id %q", router.ErrInvalidArgument, s)
	}
	return id, nil
}

// splitFirst separates the first word from the rest of the arguments.
func splitFirst(args string) (string, string) {
	args = strings.TrimSpace(args)
	first, rest, _ := strings.Cut(args, " ")
	return first, strings.TrimSpace(rest)
}

func parseLimit(s string) (int64, error) {
	b, err := utils.ParseGB(s)
	if err != nil {
		return 0, fmt.Errorf("%w: limit %q: %v", router.ErrInvalidArgument, s, err)
	}
	return b, nil
}
