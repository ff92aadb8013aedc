package inventory

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// ── test double ───────────────────────────────────────────────────────────────

// stubEC2Client serves DescribeInstances across two pages and one VPC page.
type stubEC2Client struct {
	instancePages [][]ec2types.Instance
	vpcs          []ec2types.Vpc
	describeCalls int
}

func (s *stubEC2Client) DescribeInstances(
	_ context.Context,
	params *ec2svc.DescribeInstancesInput,
	_ ...func(*ec2svc.Options),
) (*ec2svc.DescribeInstancesOutput, error) {
	page := 0
	if params.NextToken != nil {
		page = 1
	}
	s.describeCalls++
	out := &ec2svc.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: s.instancePages[page]}},
	}
	if page == 0 && len(s.instancePages) > 1 {
		out.NextToken = aws.String("page-2")
	}
	return out, nil
}

func (s *stubEC2Client) DescribeVpcs(
	_ context.Context,
	_ *ec2svc.DescribeVpcsInput,
	_ ...func(*ec2svc.Options),
) (*ec2svc.DescribeVpcsOutput, error) {
	return &ec2svc.DescribeVpcsOutput{Vpcs: s.vpcs}, nil
}

func instance(id, state, publicIP string) ec2types.Instance {
	inst := ec2types.Instance{
		InstanceId:   aws.String(id),
		InstanceType: ec2types.InstanceTypeT3Micro,
		State:        &ec2types.InstanceState{Name: ec2types.InstanceStateName(state)},
	}
	if publicIP != "" {
		inst.PublicIpAddress = aws.String(publicIP)
	}
	return inst
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestEC2CollectorPagesFully(t *testing.T) {
	stub := &stubEC2Client{instancePages: [][]ec2types.Instance{
		{instance("i-aaa", "running", "203.0.113.7"), instance("i-bbb", "stopped", "")},
		{instance("i-ccc", "running", "")},
	}}
	clients := &common.ClientSet{EC2: stub}

	got, err := (&EC2Collector{}).Collect(context.Background(), clients, "eu-west-1", "111122223333")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("collected %d instances, want 3 across both pages", len(got))
	}
	if stub.describeCalls != 2 {
		t.Fatalf("DescribeInstances called %d times, want 2", stub.describeCalls)
	}

	first := got[0]
	if first.AccountID() != "111122223333" || first.Region() != "eu-west-1" || first.Service() != "ec2" {
		t.Fatalf("mandatory fields not set: %+v", first)
	}
	if first["instanceId"] != "i-aaa" {
		t.Errorf("instanceId = %v", first["instanceId"])
	}
	if first["publiclyAccessible"] != true {
		t.Errorf("instance with public IP should be flagged publicly accessible")
	}
	if got[1]["publiclyAccessible"] != false {
		t.Errorf("instance without public IP flagged publicly accessible")
	}
}

func TestVPCCollector(t *testing.T) {
	stub := &stubEC2Client{vpcs: []ec2types.Vpc{{
		VpcId:     aws.String("vpc-123"),
		CidrBlock: aws.String("10.0.0.0/16"),
		State:     ec2types.VpcStateAvailable,
		IsDefault: aws.Bool(true),
	}}}
	clients := &common.ClientSet{EC2: stub}

	got, err := (&VPCCollector{}).Collect(context.Background(), clients, "us-east-2", "111122223333")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("collected %d VPCs, want 1", len(got))
	}
	r := got[0]
	if r["vpcId"] != "vpc-123" || r["state"] != "available" || r["isDefault"] != true {
		t.Fatalf("vpc resource = %+v", r)
	}
	if r.Region() != "us-east-2" {
		t.Errorf("region = %q", r.Region())
	}
}
