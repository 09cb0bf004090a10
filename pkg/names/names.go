// Package names generates display names for anonymous users.
package names

import (
	"fmt"
	"math/rand/v2"
)

var adjectives = []string{
	"amber", "brave", "calm", "dizzy", "eager", "fuzzy", "gentle", "happy",
	"jolly", "lucky", "mellow", "nimble", "quiet", "rapid", "sunny", "witty",
}

var animals = []string{
	"badger", "colt", "dingo", "falcon", "gecko", "heron", "ibis", "koala",
	"lemur", "marten", "otter", "panda", "quokka", "raven", "stoat", "wombat",
}

// Generate returns a name such as "sunny-otter-42".
func Generate() string {
	return fmt.Sprintf("%s-%s-%d",
		adjectives[rand.IntN(len(adjectives))],
		animals[rand.IntN(len(animals))],
		rand.IntN(100),
	)
}
