// kind.go - expression node tags
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package expr

// Kind tags an expression Node with its evaluation semantics: a tagged
// enum matched in Node.eval rather than a function pointer per node.
type Kind int

const (
	// combinators
	KindTrue Kind = iota
	KindFalse
	KindNot
	KindAnd
	KindOr
	KindComma

	// predicates (pure, side-effect free)
	KindAccess
	KindTimeCmp   // -amin/-cmin/-mmin/-atime/-ctime/-mtime
	KindNewerXY   // -newerXY
	KindUsed
	KindGid
	KindUid
	KindNoGroup
	KindNoUser
	KindDepth
	KindEmpty
	KindFSType
	KindHidden
	KindInum
	KindLinks
	KindLName
	KindName
	KindPath
	KindPerm
	KindRegex
	KindSameFile
	KindSize
	KindSparse
	KindType
	KindXType

	// actions (typically true; may have side effects and set an action hint)
	KindPrune
	KindQuit
	KindDelete
	KindPrint
	KindPrint0
	KindFPrint
	KindFPrint0
	KindPrintf
	KindFPrintf
	KindLs
	KindFls
	KindExec
	KindOk
	KindNoHidden
)

// isAction reports whether k is a side-effecting leaf rather than a pure
// test
func (k Kind) isAction() bool {
	switch k {
	case KindPrune, KindQuit, KindDelete, KindPrint, KindPrint0,
		KindFPrint, KindFPrint0, KindPrintf, KindFPrintf, KindLs, KindFls,
		KindExec, KindOk, KindNoHidden:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case KindTrue:
		return "-true"
	case KindFalse:
		return "-false"
	case KindNot:
		return "!"
	case KindAnd:
		return "-a"
	case KindOr:
		return "-o"
	case KindComma:
		return ","
	case KindAccess:
		return "-access"
	case KindTimeCmp:
		return "-time"
	case KindNewerXY:
		return "-newerXY"
	case KindUsed:
		return "-used"
	case KindGid:
		return "-gid"
	case KindUid:
		return "-uid"
	case KindNoGroup:
		return "-nogroup"
	case KindNoUser:
		return "-nouser"
	case KindDepth:
		return "-depth"
	case KindEmpty:
		return "-empty"
	case KindFSType:
		return "-fstype"
	case KindHidden:
		return "-hidden"
	case KindInum:
		return "-inum"
	case KindLinks:
		return "-links"
	case KindLName:
		return "-lname"
	case KindName:
		return "-name"
	case KindPath:
		return "-path"
	case KindPerm:
		return "-perm"
	case KindRegex:
		return "-regex"
	case KindSameFile:
		return "-samefile"
	case KindSize:
		return "-size"
	case KindSparse:
		return "-sparse"
	case KindType:
		return "-type"
	case KindXType:
		return "-xtype"
	case KindPrune:
		return "-prune"
	case KindQuit:
		return "-quit"
	case KindDelete:
		return "-delete"
	case KindPrint:
		return "-print"
	case KindPrint0:
		return "-print0"
	case KindFPrint:
		return "-fprint"
	case KindFPrint0:
		return "-fprint0"
	case KindPrintf:
		return "-printf"
	case KindFPrintf:
		return "-fprintf"
	case KindLs:
		return "-ls"
	case KindFls:
		return "-fls"
	case KindExec:
		return "-exec"
	case KindOk:
		return "-ok"
	case KindNoHidden:
		return "-nohidden"
	default:
		return "-?"
	}
}
