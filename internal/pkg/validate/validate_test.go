package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@insper.edu.br", Name: "A"}))
}

func TestStruct_ListsFailedFields(t *testing.T) {
	err := Struct(sample{Email: "nope"})
	assert.EqualError(t, err, "field 'Email' failed 'email'; field 'Name' failed 'required'")
}

func TestEmailDomain(t *testing.T) {
	assert.NoError(t, EmailDomain("x@insper.edu.br", "insper.edu.br"))
	assert.NoError(t, EmailDomain("x@INSPER.EDU.BR", "insper.edu.br"))
	assert.NoError(t, EmailDomain("x@gmail.com", ""))
	assert.Error(t, EmailDomain("x@gmail.com", "insper.edu.br"))
	assert.Error(t, EmailDomain("x@al.insper.edu.br.evil.com", "insper.edu.br"))
	assert.Error(t, EmailDomain("no-at-sign", "insper.edu.br"))
}
