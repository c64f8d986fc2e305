package scaffold

// Select resolves an init option to exactly one template id. The option may
// be a category, a template id or a manifest alias; matching ignores case
// and surrounding whitespace.
func (s *Store) Select(option string) (string, error) {
	if id, ok := s.options[normalizeOption(option)]; ok {
		return id, nil
	}
	return "", unsupported(option, s.Categories())
}

// Categories returns the distinct template categories in manifest order.
func (s *Store) Categories() []string {
	seen := make(map[string]bool, len(s.templates))
	var out []string
	for _, d := range s.templates {
		if seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		out = append(out, d.Category)
	}
	return out
}
