package generator

import (
	"fmt"
	"regexp"
	"strings"
)

// Description lengths, in characters.
const (
	AIDescriptionLen       = 200
	FallbackDescriptionLen = 150
)

var headingMarker = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)

// Clean strips emphasis and heading markers from model output. Headings are
// only recognized at the start of a line so "C# " in prose survives.
func Clean(content string) string {
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "*", "")
	content = headingMarker.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// Truncate returns at most n characters of s without splitting a code point.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var titleFormats = []string{
	"%s: Guia Completo",
	"Tudo sobre %s",
	"%s Explicado",
	"Entendendo %s",
	"%s em 2024",
}

// Title picks one of the title templates for topic.
func Title(topic string, choose Chooser) string {
	return fmt.Sprintf(titleFormats[choose(len(titleFormats))], topic)
}

// fixedTags follow the topic tag on every article.
var fixedTags = []string{"educação", "tutorial", "insights"}

// fallbackTopicTag replaces a topic that has no characters left once commas
// and whitespace are removed.
const fallbackTopicTag = "tecnologia"

// Tags derives the tag list: the lowercased topic, then the fixed tags.
// Commas in the topic become spaces so the stored list splits back cleanly.
func Tags(topic string) []string {
	topicTag := strings.Join(strings.Fields(strings.ReplaceAll(topic, ",", " ")), " ")
	if topicTag == "" {
		topicTag = fallbackTopicTag
	}
	tags := make([]string, 0, len(fixedTags)+1)
	tags = append(tags, strings.ToLower(topicTag))
	return append(tags, fixedTags...)
}
