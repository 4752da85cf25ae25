package iid

import (
	"github.com/typedb/typedb-sub037/lol"
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)
