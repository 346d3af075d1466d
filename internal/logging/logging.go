package logging

import (
	"io"
	"log"
	"os"
)

func New() *log.Logger {
	return NewTo(os.Stdout)
}

func NewTo(w io.Writer) *log.Logger {
	return log.New(w, "[kiln] ", log.LstdFlags)
}
