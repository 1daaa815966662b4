package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/miniprog/graphql-request/internal/shorthand"
	"github.com/miniprog/graphql-request/types"
)

var (
	// ErrEmptyBatch is returned when there is nothing to assemble.
	ErrEmptyBatch = errors.New("no operations to assemble")
	// ErrMixedOperationTypes is returned when a batch mixes queries and mutations.
	ErrMixedOperationTypes = errors.New("operations of a batch must share one operation type")
)

// Document is a compiled GraphQL document.
type Document struct {
	OperationType types.OperationType `json:"operationType"`
	// OperationName is every operation name joined by "_".
	OperationName string `json:"operationName"`
	// Operations lists the operation names in batch order.
	Operations []string `json:"operations"`
	Text       string   `json:"text"`
}

// Clone returns a copy of d that shares no memory with it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Operations = slices.Clone(d.Operations)
	return &c
}

// Assemble writes one document for a batch of operations.
//
// E.g., a(x:Int) and b(y:String) with fragment "id" on b ->
//
//	query a_b($a_x:Int,$b_y:String){
//	a(x:$a_x)
//	b(y:$b_y){id}
//	}
func Assemble(ops []*shorthand.Operation) (*Document, error) {
	if len(ops) == 0 {
		return nil, ErrEmptyBatch
	}
	opType := ops[0].Type
	if !opType.Valid() {
		return nil, fmt.Errorf("invalid operation type %q", opType)
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		if op.Type != opType {
			return nil, fmt.Errorf("%w: %s %q after %s", ErrMixedOperationTypes, op.Type, op.Name, opType)
		}
		names[i] = op.Name
	}
	name := strings.Join(names, types.ScopeSeparator)

	var buf bytes.Buffer
	_, _ = io.WriteString(&buf, opType.String())
	_, _ = io.WriteString(&buf, " ")
	_, _ = io.WriteString(&buf, name)
	writeDeclarations(&buf, ops)
	_, _ = io.WriteString(&buf, "{\n")
	for _, op := range ops {
		writeOperation(&buf, op)
		_, _ = io.WriteString(&buf, "\n")
	}
	_, _ = io.WriteString(&buf, "}")

	return &Document{
		OperationType: opType,
		OperationName: name,
		Operations:    names,
		Text:          buf.String(),
	}, nil
}

// writeDeclarations writes the scoped variable definitions of the header,
// or nothing when no operation declares variables.
func writeDeclarations(w io.Writer, ops []*shorthand.Operation) {
	iter := 0
	for _, op := range ops {
		for _, v := range op.Variables {
			if iter == 0 {
				_, _ = io.WriteString(w, "(")
			} else {
				_, _ = io.WriteString(w, ",")
			}
			iter++
			_, _ = io.WriteString(w, types.VariablePrefix)
			_, _ = io.WriteString(w, ScopedName(op.Name, v.Key))
			_, _ = io.WriteString(w, ":")
			_, _ = io.WriteString(w, v.Type)
		}
	}
	if iter != 0 {
		_, _ = io.WriteString(w, ")")
	}
}

// writeOperation writes one selection of the document body, binding every
// local argument to its scoped variable.
func writeOperation(w io.Writer, op *shorthand.Operation) {
	_, _ = io.WriteString(w, op.Name)
	if op.HasVariables() {
		_, _ = io.WriteString(w, "(")
		for i, v := range op.Variables {
			if i != 0 {
				_, _ = io.WriteString(w, ",")
			}
			_, _ = io.WriteString(w, v.Key)
			_, _ = io.WriteString(w, ":")
			_, _ = io.WriteString(w, types.VariablePrefix)
			_, _ = io.WriteString(w, ScopedName(op.Name, v.Key))
		}
		_, _ = io.WriteString(w, ")")
	}
	if op.ResponseNode != "" {
		_, _ = io.WriteString(w, "{")
		_, _ = io.WriteString(w, op.ResponseNode)
		_, _ = io.WriteString(w, "}")
	}
}

// ScopedName namespaces a variable key under its operation.
func ScopedName(operationName, key string) string {
	return operationName + types.ScopeSeparator + key
}
