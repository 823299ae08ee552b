// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sage-x-project/sas-verify/internal/metrics"
	"github.com/sage-x-project/sas-verify/sasstate"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a local SAS verification between two simulated devices",
	Long: `demo drives two sasstate.Flow instances through a complete to-device
verification, from m.key.verification.start through m.key.verification.mac,
exchanging events in-process instead of over a transport, and prints the
short authentication string both sides would compare out of band.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

type demoIdentity struct {
	account sasstate.Account
	signing ed25519.PrivateKey
}

func newDemoIdentity(userID, deviceID string) (demoIdentity, sasstate.Device, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return demoIdentity{}, sasstate.Device{}, fmt.Errorf("generate signing key: %w", err)
	}

	curvePriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return demoIdentity{}, sasstate.Device{}, fmt.Errorf("generate identity curve key: %w", err)
	}
	var curvePub [32]byte
	copy(curvePub[:], curvePriv.PublicKey().Bytes())

	account := sasstate.Account{UserID: userID, DeviceID: deviceID, SigningKey: pub}
	device := sasstate.Device{UserID: userID, DeviceID: deviceID, Ed25519Key: pub, Curve25519Key: curvePub}
	return demoIdentity{account: account, signing: priv}, device, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	alice, aliceDevice, err := newDemoIdentity("@alice:example.org", "JLAFKJWSCS")
	if err != nil {
		return err
	}
	bob, bobDevice, err := newDemoIdentity("@bob:example.org", "BOBDEVCIE")
	if err != nil {
		return err
	}

	aliceIdentity := sasstate.IdentityContext{Account: alice.account, Peer: bobDevice}
	bobIdentity := sasstate.IdentityContext{Account: bob.account, Peer: aliceDevice}

	flowID := sasstate.NewToDeviceFlowID(uuid.NewString())
	catalog := sasstate.DefaultCatalog()

	aliceFlow, start, err := sasstate.NewFlow(flowID, aliceIdentity, catalog, false, sasstate.Options{})
	if err != nil {
		return fmt.Errorf("alice: start flow: %w", err)
	}
	fmt.Printf("alice -> start (transaction %s)\n", flowID.TransactionID())

	bobFlow, err := sasstate.FromStartEvent(flowID, bobIdentity, catalog, alice.account.UserID, start, false, sasstate.Options{})
	if err != nil {
		return fmt.Errorf("bob: receive start: %w", err)
	}

	bobFlow, acceptMsg, bobKeyMsg, err := bobFlow.AgreeToVerify([]sasstate.ShortAuthString{sasstate.SASEmoji, sasstate.SASDecimal})
	if err != nil {
		return fmt.Errorf("bob: agree to verify: %w", err)
	}
	fmt.Println("bob   -> accept, key")

	aliceFlow, aliceKeyMsg, err := aliceFlow.Accept(bob.account.UserID, acceptMsg)
	if err != nil {
		return fmt.Errorf("alice: accept: %w", err)
	}
	fmt.Println("alice -> key")

	bobFlow, err = bobFlow.ReceiveKey(alice.account.UserID, aliceKeyMsg)
	if err != nil {
		return fmt.Errorf("bob: receive key: %w", err)
	}
	aliceFlow, err = aliceFlow.ReceiveKey(bob.account.UserID, bobKeyMsg)
	if err != nil {
		return fmt.Errorf("alice: receive key: %w", err)
	}

	if err := printSAS("alice", aliceFlow); err != nil {
		return err
	}
	if err := printSAS("bob", bobFlow); err != nil {
		return err
	}

	aliceFlow, err = aliceFlow.Confirm()
	if err != nil {
		return fmt.Errorf("alice: confirm: %w", err)
	}
	bobFlow, err = bobFlow.Confirm()
	if err != nil {
		return fmt.Errorf("bob: confirm: %w", err)
	}

	aliceMac, err := aliceFlow.SendMac()
	if err != nil {
		return fmt.Errorf("alice: send mac: %w", err)
	}
	bobMac, err := bobFlow.SendMac()
	if err != nil {
		return fmt.Errorf("bob: send mac: %w", err)
	}

	bobFlow, err = bobFlow.ReceiveMac(alice.account.UserID, aliceMac, knownKeysFor(aliceDevice))
	if err != nil {
		return fmt.Errorf("bob: receive mac: %w", err)
	}
	aliceFlow, err = aliceFlow.ReceiveMac(bob.account.UserID, bobMac, knownKeysFor(bobDevice))
	if err != nil {
		return fmt.Errorf("alice: receive mac: %w", err)
	}

	fmt.Printf("alice phase: %s, verified devices: %d\n", aliceFlow.Phase(), len(aliceFlow.VerifiedDevices()))
	fmt.Printf("bob   phase: %s, verified devices: %d\n", bobFlow.Phase(), len(bobFlow.VerifiedDevices()))

	snapshot := metrics.GetGlobalCollector().GetSnapshot()
	fmt.Printf("\ntransitions recorded: %d, mac validations: %d (valid %d)\n",
		snapshot.TransitionCount, snapshot.MacValidations, snapshot.MacValid)

	return nil
}

func knownKeysFor(device sasstate.Device) map[string]string {
	return map[string]string{
		"ed25519:" + device.DeviceID: base64.RawStdEncoding.EncodeToString(device.Ed25519Key),
	}
}

func printSAS(who string, flow *sasstate.Flow) error {
	emoji, err := flow.ShortAuthEmoji()
	if err != nil {
		return fmt.Errorf("%s: short auth emoji: %w", who, err)
	}
	d1, d2, d3, err := flow.ShortAuthDecimal()
	if err != nil {
		return fmt.Errorf("%s: short auth decimal: %w", who, err)
	}

	fmt.Printf("%-5s sas emoji:  ", who)
	for _, e := range emoji {
		fmt.Printf("%s(%s) ", e.Emoji, e.Name)
	}
	fmt.Printf("\n%-5s sas decimal: %d-%d-%d\n", who, d1, d2, d3)
	return nil
}
