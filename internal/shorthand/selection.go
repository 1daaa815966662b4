package shorthand

// Selection supplies the response-node fragment of each operation.
// A fragment is inserted verbatim between braces after the operation.
type Selection interface {
	Fragment(operationName string) string
}

// Node applies the same fragment to every operation of a batch.
type Node string

func (n Node) Fragment(string) string {
	return string(n)
}

// Nodes maps operation names to fragments. Missing names get no fragment.
type Nodes map[string]string

func (n Nodes) Fragment(operationName string) string {
	return n[operationName]
}
