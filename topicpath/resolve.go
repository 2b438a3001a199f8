// Package topicpath resolves file paths that are inherited along the topic hierarchy
package topicpath

import (
	"fmt"
	"strings"

	"github.com/foomo/contentserver-topics/topic"
)

const rootWebPathPrefix = "/Root/"

type Options struct {
	// InheritValue enables the resolution, without it Resolve returns an empty path
	InheritValue bool
	// RelativeToTopicPath appends the web path between the defining ancestor and the topic
	RelativeToTopicPath bool
	// IncludeCurrentTopic ends the relative path at the topic instead of its parent
	IncludeCurrentTopic bool
	// BaseTopicPath lists comma separated keys the relative path is truncated after
	BaseTopicPath string
}

func DefaultOptions() Options {
	return Options{
		InheritValue:        true,
		RelativeToTopicPath: true,
	}
}

// Resolve walks up from start until a topic defines attributeKey and derives the path
// from that value. An empty string is returned when no ancestor defines it.
func Resolve(start topic.Node, attributeKey string, opts Options) (string, error) {
	if start == nil {
		return "", fmt.Errorf("%w: path resolution needs a start topic", topic.ErrInvalidArgument)
	}
	if !opts.InheritValue || attributeKey == "" {
		return "", nil
	}
	source, basePath := inheritedValue(start, attributeKey)
	if source == nil {
		return "", nil
	}
	if !opts.RelativeToTopicPath {
		return basePath, nil
	}

	end := start
	if !opts.IncludeCurrentTopic {
		end = start.Parent()
	}
	relative := ""
	if end != nil {
		var err error
		if relative, err = relativePath(source, end); err != nil {
			return "", err
		}
	}
	relative = truncate(relative, opts.BaseTopicPath)

	filePath := basePath + relative
	if strings.Contains(filePath, `\`) {
		filePath = strings.ReplaceAll(filePath, "/", `\`)
	}
	return filePath, nil
}

// inheritedValue returns the closest topic at or above node with a non empty value
func inheritedValue(node topic.Node, attributeKey string) (topic.Node, string) {
	for current := node; current != nil; current = current.Parent() {
		if value := current.Attributes()[attributeKey]; value != "" {
			return current, value
		}
	}
	return nil, ""
}

func relativePath(source, end topic.Node) (string, error) {
	sourcePath := normalizeWebPath(source.WebPath())
	endPath := normalizeWebPath(end.WebPath())
	if len(sourcePath) > len(endPath) {
		return "", fmt.Errorf(
			"%w: web path %q of %s is longer than web path %q of %s",
			topic.ErrInvariantViolation, sourcePath, source.UniqueKey(), endPath, end.UniqueKey(),
		)
	}
	if !strings.HasPrefix(endPath, sourcePath) {
		return "", fmt.Errorf(
			"%w: web path %q of %s is not below %q of %s",
			topic.ErrInvariantViolation, endPath, end.UniqueKey(), sourcePath, source.UniqueKey(),
		)
	}
	return endPath[len(sourcePath):], nil
}

func normalizeWebPath(webPath string) string {
	if strings.HasPrefix(webPath, rootWebPathPrefix) {
		return "/" + strings.TrimPrefix(webPath, rootWebPathPrefix)
	}
	return webPath
}

// truncate cuts relative after the earliest base topic token and one trailing separator
func truncate(relative, baseTopicPath string) string {
	cut := -1
	for _, token := range strings.Split(baseTopicPath, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		idx := strings.Index(relative, token)
		if idx < 0 {
			continue
		}
		if end := idx + len(token) + 1; cut < 0 || end < cut {
			cut = end
		}
	}
	if cut < 0 {
		return relative
	}
	if cut > len(relative) {
		cut = len(relative)
	}
	return relative[:cut]
}
