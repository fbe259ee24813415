package runner

import "regexp"

// stdinPattern matches the common C++ standard-input read calls. Detection
// is purely syntactic; a match only means the terminal view should offer an
// input field.
var stdinPattern = regexp.MustCompile(`(std::)?cin\s*>>|(std::)?getline\s*\(|scanf\s*\(|\bgets\s*\(|fgets\s*\(|getchar\s*\(|cin\.get\s*\(`)

// ReadsStdin reports whether the source references standard-input reads.
func ReadsStdin(code string) bool {
	return stdinPattern.MatchString(code)
}
