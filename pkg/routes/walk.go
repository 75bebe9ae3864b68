package routes

// Walk calls fn for every route in groups with its fully prefixed pattern.
func Walk(groups []Group, fn func(path string, route Route)) {
	for _, group := range groups {
		walkGroup("", group, fn)
	}
}

func walkGroup(parentPrefix string, group Group, fn func(string, Route)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(fullPrefix+route.Pattern, route)
	}
	for _, child := range group.Children {
		walkGroup(fullPrefix, child, fn)
	}
}
