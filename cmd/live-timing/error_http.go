package main

import (
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strings"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
)

type HTTPErrorHandler struct {
	Cause string
	Error error
}

const httpErrorMessage = `!!! An Error Occurred !!!
-------------------------

Failed to start the live timing dashboard.

Your configuration file is probably incorrect. Please check that config.yml is
valid YAML and that upstream.base_url and display.timezone are set correctly.

      Error Details
-------------------------

The error occurred attempting to: %s
The error more specifically is: %s

-------------------------
`

func (h *HTTPErrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, httpErrorMessage, h.Cause, h.Error)
}

func (h *HTTPErrorHandler) String() string {
	return fmt.Sprintf(httpErrorMessage, h.Cause, h.Error)
}

func ServeHTTPWithError(addr string, cause string, err error) {
	h := &HTTPErrorHandler{Cause: cause, Error: err}

	fmt.Println(h.String())

	listener, err := net.Listen("tcp", addr)

	if err != nil {
		return
	}

	if runtime.GOOS == "windows" {
		_ = browser.OpenURL("http://" + strings.Replace(addr, "0.0.0.0", "127.0.0.1", 1))
	}

	if err := http.Serve(listener, h); err != nil {
		logrus.Fatal(err)
	}
}
