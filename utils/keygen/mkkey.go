// Copyright 2014 The Dename Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Command keygen writes a fresh VRF key pair for an akd directory.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/coniks-sys/akd-go/crypto/vrf"
	"github.com/coniks-sys/akd-go/utils"
)

const (
	VRF_SECRET string = "vrf.priv"
	VRF_PUBLIC string = "vrf.pub"
)

func main() {
	var dir = flag.String("dir", ".", "Directory to write the key pair to")
	flag.Parse()
	mkVrfKey(*dir)
}

func mkVrfKey(dir string) {
	secret := path.Join(dir, VRF_SECRET)
	public := path.Join(dir, VRF_PUBLIC)
	for _, f := range []string{secret, public} {
		if _, err := os.Stat(f); err == nil {
			fmt.Fprintf(os.Stderr, "%s already exists\n", f)
			os.Exit(1)
		}
	}

	sk, err := vrf.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatal(err)
	}
	pk, ok := sk.Public()
	if !ok {
		log.Fatal(vrf.ErrGetPubKey)
	}
	if err := utils.WriteFile(secret, sk, 0600); err != nil {
		log.Fatal(err)
	}
	if err := utils.WriteFile(public, pk, 0644); err != nil {
		log.Fatal(err)
	}
}
