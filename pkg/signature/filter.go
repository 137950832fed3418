package signature

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// FilterConfig specifies include and exclude patterns for signature
// filtering. Patterns are regexes matched against the qualified
// "module/name" form.
type FilterConfig struct {
	Include []string
	Exclude []string
}

// ParsePatterns splits a comma-separated flag value into individual
// patterns, trimming whitespace.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include and exclude patterns to sigs, preserving
// registration order. Include is applied first; empty include means
// "include all". Returns an error for invalid regex.
func Filter(sigs []*types.Signature, config FilterConfig) ([]*types.Signature, error) {
	if len(sigs) == 0 {
		return sigs, nil
	}

	include, err := compilePatterns(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(config.Exclude)
	if err != nil {
		return nil, err
	}

	filtered := sigs
	if len(include) > 0 {
		filtered = keep(filtered, func(s *types.Signature) bool {
			return matchesAny(qualified(s), include)
		})
	}
	if len(exclude) > 0 {
		filtered = keep(filtered, func(s *types.Signature) bool {
			return !matchesAny(qualified(s), exclude)
		})
	}
	return filtered, nil
}

func qualified(s *types.Signature) string {
	return s.Module + "/" + s.Name
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var regexes []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

func keep(sigs []*types.Signature, pred func(*types.Signature) bool) []*types.Signature {
	result := make([]*types.Signature, 0, len(sigs))
	for _, sig := range sigs {
		if pred(sig) {
			result = append(result, sig)
		}
	}
	return result
}

func matchesAny(name string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
