package collectors

import "strings"

const trailingPunct = ".,:;!?"

// ExtractHashtags returns the hashtags found in text, without the # prefix.
func ExtractHashtags(text string) []string {
	if text == "" {
		return nil
	}

	var tags []string
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		tag := strings.TrimRight(strings.TrimSpace(word[1:]), trailingPunct)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ExtractMentions returns the mentions found in text, without the @ prefix.
func ExtractMentions(text string) []string {
	if text == "" {
		return nil
	}

	var mentions []string
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "@") {
			continue
		}
		mention := strings.TrimRight(strings.TrimSpace(word[1:]), trailingPunct)
		if mention != "" {
			mentions = append(mentions, mention)
		}
	}
	return mentions
}

// ExtractLinks returns the http(s) links found in text.
func ExtractLinks(text string) []string {
	if text == "" {
		return nil
	}

	var links []string
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "http://") && !strings.HasPrefix(word, "https://") {
			continue
		}
		link := strings.TrimRight(word, trailingPunct)
		if link != "" {
			links = append(links, link)
		}
	}
	return links
}
