package file

import "github.com/fsnotify/fsnotify"

func fsnotifyEvent(name, op string) fsnotify.Event {
	ops := map[string]fsnotify.Op{
		"write":  fsnotify.Write,
		"create": fsnotify.Create,
		"chmod":  fsnotify.Chmod,
	}
	return fsnotify.Event{Name: name, Op: ops[op]}
}
