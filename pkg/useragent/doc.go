// Package useragent classifies User-Agent strings into device type,
// operating system, and browser for session device tracking.
//
// Classification is heuristic and intentionally small: ordered substring
// checks that cover the browsers and platforms worth distinguishing in a
// session list ("Chrome on Windows desktop", "Safari on iPhone"). It is not
// a full User-Agent parser and does not attempt version extraction or bot
// detection.
//
// # Usage
//
//	import "github.com/dmitrymomot/authkit/pkg/useragent"
//
//	info := useragent.Classify(r.Header.Get("User-Agent"))
//	fmt.Println(info.Type)    // "Mobile"
//	fmt.Println(info.OS)      // "Android"
//	fmt.Println(info.Browser) // "Chrome"
//
// Classify never fails; unrecognized strings yield a Desktop device with
// empty OS and Browser fields.
package useragent
