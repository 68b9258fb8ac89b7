/*
SPDX-FileCopyrightText: Copyright (c) 2026 NVIDIA CORPORATION & AFFILIATES. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

// Command dealpipe-ctl is a small standalone operator tool for exercising
// the admin service's watch-lifecycle and housekeeping endpoints from a
// terminal, mirroring the operational runbooks original_source/ shipped
// as scripts.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// OutputFrame is the single JSON line this tool prints for every
// operation, so callers can pipe its output into other tooling instead of
// scraping human-readable text.
type OutputFrame struct {
	Type      string `json:"type"`
	Operation string `json:"operation"`
	Status    int    `json:"status,omitempty"`
	Body      string `json:"body,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

var (
	operation   = flag.String("operation", "watch-start", "Operation: watch-start, watch-replace, watch-stop, tasks-webhook-create, tasks-webhook-delete, housekeeping")
	adminAddr   = flag.String("admin-address", "", "Admin service base URL (or use DEALPIPE_ADMIN_ADDRESS)")
	tenantID    = flag.String("tenant-id", "", "Tenant UUID (or use TENANT_ID)")
	calendarID  = flag.String("calendar-id", "", "Calendar id for watch operations")
	channelID   = flag.String("channel-id", "", "Channel id for watch-stop")
	resourceGID = flag.String("resource-gid", "", "Resource gid for tasks-webhook operations")
	webhookGID  = flag.String("webhook-gid", "", "Webhook gid for tasks-webhook-delete")
	timeout     = flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
)

func main() {
	flag.Parse()

	if *adminAddr == "" {
		*adminAddr = os.Getenv("DEALPIPE_ADMIN_ADDRESS")
	}
	if *tenantID == "" {
		*tenantID = os.Getenv("TENANT_ID")
	}
	if *adminAddr == "" {
		log.Fatal("missing required parameter: admin-address")
	}

	client := &http.Client{Timeout: *timeout}

	var (
		path string
		body map[string]any
	)
	switch *operation {
	case "watch-start":
		path = "/admin/calendar/watch/start"
		body = map[string]any{"calendarId": *calendarID, "tenantId": *tenantID}
	case "watch-replace":
		path = "/admin/calendar/watch/replace"
		body = map[string]any{"calendarId": *calendarID, "tenantId": *tenantID}
	case "watch-stop":
		path = "/admin/calendar/watch/stop"
		body = map[string]any{"channelId": *channelID, "tenantId": *tenantID}
	case "tasks-webhook-create":
		path = "/admin/tasks/webhook/create"
		body = map[string]any{"resourceGid": *resourceGID, "tenantId": *tenantID}
	case "tasks-webhook-delete":
		path = "/admin/tasks/webhook/delete"
		body = map[string]any{"webhookGid": *webhookGID, "tenantId": *tenantID}
	case "housekeeping":
		path = "/admin/housekeeping"
		body = map[string]any{}
	default:
		log.Fatalf("unknown operation: %s", *operation)
	}

	if err := call(client, *adminAddr+path, *operation, body); err != nil {
		outputError(*operation, "REQUEST_FAILED", err.Error())
		os.Exit(1)
	}
}

func call(client *http.Client, url, op string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	outputFrame(OutputFrame{
		Type:      "result",
		Operation: op,
		Status:    resp.StatusCode,
		Body:      string(respBody),
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("admin returned status %d", resp.StatusCode)
	}
	return nil
}

func outputError(op, code, message string) {
	outputFrame(OutputFrame{
		Type:      "error",
		Operation: op,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func outputFrame(frame OutputFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("failed to marshal frame: %v", err)
		return
	}
	fmt.Println(string(data))
}
