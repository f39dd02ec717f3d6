package callgraph

import "strings"

// Constructor is the method name static-analysis tools use for constructors.
const Constructor = "<init>"

// Simplify converts a full method signature into a "Class.method" label.
//
//	Simplify("<a.b.Book: void <init>(java.lang.String)>") // "Book.<init>"
//	Simplify("<a.b.Book: int pages()>")                   // "Book.pages"
//
// One leading '<' and one trailing '>' are removed. If the remaining text has
// no ':' it is returned unchanged.
func Simplify(signature string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(signature, "<"), ">")

	cls, rest, ok := strings.Cut(inner, ":")
	if !ok {
		return inner
	}
	if i := strings.LastIndex(cls, "."); i >= 0 {
		cls = cls[i+1:]
	}

	head, _, _ := strings.Cut(rest, "(")
	method := strings.TrimSpace(head)
	if fields := strings.Fields(head); len(fields) > 0 {
		method = fields[len(fields)-1]
	}

	return cls + "." + method
}

// ClassName returns the cluster key of a signature: the text before the
// first '.' of its simplified label.
func ClassName(signature string) string {
	cls, _, _ := strings.Cut(Simplify(signature), ".")
	return cls
}

// MethodName returns the simplified label without its class prefix.
// Signatures that cannot be simplified are returned as their inner text.
func MethodName(signature string) string {
	simplified := Simplify(signature)
	if _, method, ok := strings.Cut(simplified, "."); ok {
		return method
	}
	return simplified
}

// DisplayLabel returns the method name shown for a node. When ctorLabel is
// non-empty it replaces the constructor marker. The result is only for display
// and must never be used as a lookup key.
func DisplayLabel(signature, ctorLabel string) string {
	method := MethodName(signature)
	if ctorLabel != "" && method == Constructor {
		return ctorLabel
	}
	return method
}

// ShortLabel is [Simplify] with the constructor marker replaced by ctorLabel
// when ctorLabel is non-empty. Like [DisplayLabel] it is for display only.
func ShortLabel(signature, ctorLabel string) string {
	simplified := Simplify(signature)
	cls, method, ok := strings.Cut(simplified, ".")
	if !ok || ctorLabel == "" || method != Constructor {
		return simplified
	}
	return cls + "." + ctorLabel
}
