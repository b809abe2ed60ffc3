/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zkcomm-rest (ZK Communication REST Server) of aries-zkcomm-go.
//
//
// Terms Of Service:
//
//
//     Schemes: https
//     Version: 0.1.0
//     License: SPDX-License-Identifier: Apache-2.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/cmd/zkcomm-rest/startcmd"
)

// This is an application which starts the envelope and revocation controller API on given port.
func main() {
	rootCmd := &cobra.Command{
		Use: "zkcomm-rest",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	startCmd, err := startcmd.Cmd(&startcmd.HTTPServer{})
	if err != nil {
		log.New("zkcomm/rest").Fatalf(err.Error())
	}

	rootCmd.AddCommand(startCmd)

	if err := rootCmd.Execute(); err != nil {
		log.New("zkcomm/rest").Fatalf("Failed to run zkcomm-rest: %s", err)
	}
}
